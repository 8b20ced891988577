package vantha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDMSessionMap(t *testing.T) {
	t.Parallel()
	var sessions dmSessionMap

	_, ok := sessions.Get("user1")
	assert.False(t, ok)

	sessions.Set("user1", "ticket1")
	ticketID, ok := sessions.Get("user1")
	require.True(t, ok)
	assert.Equal(t, "ticket1", ticketID)

	// Re-binding a user drops the old ticket mapping.
	sessions.Set("user1", "ticket2")
	ticketID, ok = sessions.Get("user1")
	require.True(t, ok)
	assert.Equal(t, "ticket2", ticketID)

	sessions.DeleteTicket("ticket1")
	_, ok = sessions.Get("user1")
	assert.True(t, ok, "deleting a stale ticket must not drop the current session")

	sessions.DeleteTicket("ticket2")
	_, ok = sessions.Get("user1")
	assert.False(t, ok)

	// Unknown tickets are a no-op.
	sessions.DeleteTicket("never-existed")
}

func TestTicketTranscript(t *testing.T) {
	t.Parallel()

	ticket := &Ticket{
		UserID:    "user1",
		GuildID:   "guild1",
		Status:    TicketStatusClosed,
		ClosedBy:  "mod1",
		CreatedAt: 1_700_000_000,
		ClosedAt:  1_700_003_600,
		Messages: []TicketMessage{
			{UserID: "user1", Content: "I need help", Timestamp: 1_700_000_000},
			{UserID: "mod1", Content: "On it", Timestamp: 1_700_000_100},
		},
	}

	embed := ticketTranscript("guild1_user1_123", ticket)
	assert.Contains(t, embed.Description, "I need help")
	assert.Contains(t, embed.Description, "On it")
	assert.Contains(t, embed.Description, "<@user1>")
	assert.Contains(t, embed.Description, "<@mod1>")

	empty := ticketTranscript(
		"guild1_user2_456",
		&Ticket{UserID: "user2", Status: TicketStatusClosed},
	)
	assert.Contains(t, empty.Description, "_no messages_")
}
