package vantha

import (
	"fmt"
	"sort"
)

// Ticket statuses. The lifecycle is one-way: open tickets close exactly
// once, whether explicitly or because their channel disappeared.
const (
	TicketStatusOpen   = "open"
	TicketStatusClosed = "closed"
)

// Ticket is a modmail conversation between a user and a guild's staff.
type Ticket struct {
	UserID    string `json:"user_id"`
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	CreatedAt int64  `json:"created_at"`
	Status    string `json:"status"`
	ClosedBy  string `json:"closed_by,omitempty"`
	ClosedAt  int64  `json:"closed_at,omitempty"`

	// Messages is append-only
	Messages []TicketMessage `json:"messages"`
}

// TicketMessage is one relayed message within a ticket.
type TicketMessage struct {
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

func (t *Ticket) clone() *Ticket {
	c := *t
	c.Messages = append([]TicketMessage(nil), t.Messages...)
	return &c
}

// CreateTicket opens a new ticket and returns its ID. Creation is
// rejected (empty ID, false) when the user already has the configured
// maximum of open tickets in that guild; nothing is stored in that case.
//
// Ticket IDs combine guild, user and creation instant; the nanosecond
// component is bumped if a repeat ticket would collide.
func (s *Store) CreateTicket(userID, guildID, channelID string) (string, bool) {
	s.ticketsMu.Lock()
	defer s.ticketsMu.Unlock()

	var open int
	for _, t := range s.tickets {
		if t.UserID == userID && t.GuildID == guildID && t.Status == TicketStatusOpen {
			open++
		}
	}
	if open >= s.modmail.MaxOpenTickets {
		return "", false
	}

	now := s.now()
	stamp := now.UnixNano()
	ticketID := fmt.Sprintf("%s_%s_%d", guildID, userID, stamp)
	for _, exists := s.tickets[ticketID]; exists; _, exists = s.tickets[ticketID] {
		stamp++
		ticketID = fmt.Sprintf("%s_%s_%d", guildID, userID, stamp)
	}

	s.tickets[ticketID] = &Ticket{
		UserID:    userID,
		GuildID:   guildID,
		ChannelID: channelID,
		CreatedAt: now.Unix(),
		Status:    TicketStatusOpen,
		Messages:  []TicketMessage{},
	}
	s.markDirty()
	return ticketID, true
}

// Ticket returns a copy of the ticket, or nil if no such ID exists.
func (s *Store) Ticket(ticketID string) *Ticket {
	s.ticketsMu.Lock()
	defer s.ticketsMu.Unlock()
	t, ok := s.tickets[ticketID]
	if !ok {
		return nil
	}
	return t.clone()
}

// TicketByChannel returns the open ticket bound to the given channel,
// with its ID, or ("", nil) if none is open there.
func (s *Store) TicketByChannel(channelID string) (string, *Ticket) {
	s.ticketsMu.Lock()
	defer s.ticketsMu.Unlock()
	for id, t := range s.tickets {
		if t.ChannelID == channelID && t.Status == TicketStatusOpen {
			return id, t.clone()
		}
	}
	return "", nil
}

// CloseTicket transitions the ticket to closed, recording who closed it
// and when. Closing an already-closed or unknown ticket is a no-op
// returning false.
func (s *Store) CloseTicket(ticketID, closerID string) bool {
	s.ticketsMu.Lock()
	defer s.ticketsMu.Unlock()
	t, ok := s.tickets[ticketID]
	if !ok || t.Status == TicketStatusClosed {
		return false
	}
	t.Status = TicketStatusClosed
	t.ClosedBy = closerID
	t.ClosedAt = s.now().Unix()
	s.markDirty()
	return true
}

// AppendTicketMessage records a message on the ticket. Unknown tickets
// are ignored.
func (s *Store) AppendTicketMessage(ticketID, userID, content string) bool {
	s.ticketsMu.Lock()
	defer s.ticketsMu.Unlock()
	t, ok := s.tickets[ticketID]
	if !ok {
		return false
	}
	t.Messages = append(
		t.Messages, TicketMessage{
			UserID:    userID,
			Content:   content,
			Timestamp: s.now().Unix(),
		},
	)
	s.markDirty()
	return true
}

// OpenTicketsFor returns the IDs of the user's open tickets in a guild,
// oldest first.
func (s *Store) OpenTicketsFor(userID, guildID string) []string {
	s.ticketsMu.Lock()
	defer s.ticketsMu.Unlock()

	type openTicket struct {
		id        string
		createdAt int64
	}
	var open []openTicket
	for id, t := range s.tickets {
		if t.UserID == userID && t.GuildID == guildID && t.Status == TicketStatusOpen {
			open = append(open, openTicket{id: id, createdAt: t.CreatedAt})
		}
	}
	sort.Slice(
		open, func(i, j int) bool {
			if open[i].createdAt != open[j].createdAt {
				return open[i].createdAt < open[j].createdAt
			}
			return open[i].id < open[j].id
		},
	)

	ids := make([]string, len(open))
	for i, t := range open {
		ids[i] = t.id
	}
	return ids
}

// OpenTickets returns the IDs and channel refs of every open ticket,
// for the stale-channel sweep.
func (s *Store) OpenTickets() map[string]string {
	s.ticketsMu.Lock()
	defer s.ticketsMu.Unlock()
	open := map[string]string{}
	for id, t := range s.tickets {
		if t.Status == TicketStatusOpen {
			open[id] = t.ChannelID
		}
	}
	return open
}
