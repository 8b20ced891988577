package vantha

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTicketMaxOpen(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	ids := make([]string, 0, DefaultMaxOpenTickets)
	for n := 0; n < DefaultMaxOpenTickets; n++ {
		id, created := store.CreateTicket(userID, "guild1", fmt.Sprintf("chan%d", n))
		require.True(t, created, "ticket %d should be accepted", n)
		require.NotEmpty(t, id)
		ids = append(ids, id)
	}

	// One past the limit: rejected, nothing stored.
	id, created := store.CreateTicket(userID, "guild1", "chan-overflow")
	assert.False(t, created)
	assert.Empty(t, id)
	assert.Len(t, store.OpenTicketsFor(userID, "guild1"), DefaultMaxOpenTickets)

	// The limit is per guild; the same user can open elsewhere.
	_, created = store.CreateTicket(userID, "guild2", "other-chan")
	assert.True(t, created)

	// Closing one frees a slot.
	require.True(t, store.CloseTicket(ids[0], "mod1"))
	_, created = store.CreateTicket(userID, "guild1", "chan-after-close")
	assert.True(t, created)
}

func TestCloseTicketIdempotent(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	current := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return current }

	ticketID, created := store.CreateTicket(t.Name(), "guild1", "chan1")
	require.True(t, created)

	require.True(t, store.CloseTicket(ticketID, "mod1"))
	first := store.Ticket(ticketID)
	require.NotNil(t, first)
	assert.Equal(t, TicketStatusClosed, first.Status)
	assert.Equal(t, "mod1", first.ClosedBy)
	assert.Equal(t, current.Unix(), first.ClosedAt)

	// A second close is a no-op: closer and close time are unchanged.
	current = current.Add(time.Hour)
	assert.False(t, store.CloseTicket(ticketID, "mod2"))
	second := store.Ticket(ticketID)
	assert.Equal(t, "mod1", second.ClosedBy)
	assert.Equal(t, first.ClosedAt, second.ClosedAt)

	assert.False(t, store.CloseTicket("no-such-ticket", "mod1"))
}

func TestTicketByChannel(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	ticketID, created := store.CreateTicket(t.Name(), "guild1", "chan1")
	require.True(t, created)

	foundID, ticket := store.TicketByChannel("chan1")
	require.NotNil(t, ticket)
	assert.Equal(t, ticketID, foundID)
	assert.Equal(t, t.Name(), ticket.UserID)

	_, missing := store.TicketByChannel("unknown-chan")
	assert.Nil(t, missing)

	// Closed tickets no longer match their channel.
	require.True(t, store.CloseTicket(ticketID, "mod1"))
	_, closed := store.TicketByChannel("chan1")
	assert.Nil(t, closed)
}

func TestAppendTicketMessage(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	ticketID, created := store.CreateTicket(t.Name(), "guild1", "chan1")
	require.True(t, created)

	assert.True(t, store.AppendTicketMessage(ticketID, t.Name(), "first"))
	assert.True(t, store.AppendTicketMessage(ticketID, "staff1", "second"))
	assert.False(t, store.AppendTicketMessage("no-such-ticket", t.Name(), "lost"))

	ticket := store.Ticket(ticketID)
	require.NotNil(t, ticket)
	require.Len(t, ticket.Messages, 2)
	assert.Equal(t, "first", ticket.Messages[0].Content)
	assert.Equal(t, "staff1", ticket.Messages[1].UserID)

	// Messages survive on closed tickets too.
	require.True(t, store.CloseTicket(ticketID, "mod1"))
	assert.True(t, store.AppendTicketMessage(ticketID, "staff1", "closing note"))
	assert.Len(t, store.Ticket(ticketID).Messages, 3)
}

func TestOpenTicketsForOrdering(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	current := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return current }

	first, created := store.CreateTicket(userID, "guild1", "chan1")
	require.True(t, created)
	current = current.Add(time.Minute)
	second, created := store.CreateTicket(userID, "guild1", "chan2")
	require.True(t, created)

	open := store.OpenTicketsFor(userID, "guild1")
	require.Len(t, open, 2)
	assert.Equal(t, first, open[0])
	assert.Equal(t, second, open[1])
}

func TestOpenTicketsSnapshot(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	openID, created := store.CreateTicket("user1", "guild1", "chan1")
	require.True(t, created)
	closedID, created := store.CreateTicket("user2", "guild1", "chan2")
	require.True(t, created)
	require.True(t, store.CloseTicket(closedID, "mod1"))

	open := store.OpenTickets()
	assert.Equal(t, map[string]string{openID: "chan1"}, open)
}

func TestIsUnknownChannel(t *testing.T) {
	t.Parallel()

	deleted := &discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{
			Code:    discordgo.ErrCodeUnknownChannel,
			Message: "Unknown Channel",
		},
	}
	assert.True(t, isUnknownChannel(deleted))
	assert.True(t, isUnknownChannel(fmt.Errorf("checking channel: %w", deleted)))

	notFound := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound},
	}
	assert.True(t, isUnknownChannel(notFound))

	// Rate limits and transient failures must not look like a deleted
	// channel, or the sweep would close live tickets.
	rateLimited := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusTooManyRequests},
	}
	assert.False(t, isUnknownChannel(rateLimited))
	assert.False(t, isUnknownChannel(&discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusInternalServerError},
	}))
	assert.False(t, isUnknownChannel(errors.New("connection reset")))
	assert.False(t, isUnknownChannel(nil))
}

func TestTicketCloneIsolation(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	ticketID, created := store.CreateTicket(t.Name(), "guild1", "chan1")
	require.True(t, created)
	require.True(t, store.AppendTicketMessage(ticketID, t.Name(), "original"))

	ticket := store.Ticket(ticketID)
	ticket.Status = TicketStatusClosed
	ticket.Messages[0].Content = "mutated"

	fresh := store.Ticket(ticketID)
	assert.Equal(t, TicketStatusOpen, fresh.Status)
	assert.Equal(t, "original", fresh.Messages[0].Content)
}
