package vantha

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

// dmSessionMap tracks which ticket a user's DM conversation feeds into.
// A user has at most one active DM session even when they hold multiple
// open tickets across guilds.
type dmSessionMap struct {
	mu       sync.Mutex
	byUser   map[string]string // user ID -> ticket ID
	byTicket map[string]string // ticket ID -> user ID
}

func (m *dmSessionMap) Get(userID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticketID, ok := m.byUser[userID]
	return ticketID, ok
}

func (m *dmSessionMap) Set(userID, ticketID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byUser == nil {
		m.byUser = map[string]string{}
		m.byTicket = map[string]string{}
	}
	if prev, ok := m.byUser[userID]; ok {
		delete(m.byTicket, prev)
	}
	m.byUser[userID] = ticketID
	m.byTicket[ticketID] = userID
}

// DeleteTicket removes the session bound to a ticket, if any. Safe to
// call with ticket IDs that never had a session.
func (m *dmSessionMap) DeleteTicket(ticketID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.byTicket[ticketID]
	if !ok {
		return
	}
	delete(m.byTicket, ticketID)
	delete(m.byUser, userID)
}

// handleModmailDM routes a direct message into the user's open ticket,
// creating a ticket and staff channel on first contact.
func (d *Discord) handleModmailDM(
	ctx context.Context,
	s *discordgo.Session,
	m *discordgo.MessageCreate,
) {
	log := d.logger.With(loggerNameKey, "modmail", "user_id", m.Author.ID)

	content := strings.TrimSpace(m.Content)
	if content == "" && len(m.Attachments) == 0 {
		return
	}
	for _, a := range m.Attachments {
		content = strings.TrimSpace(content + "\n" + a.URL)
	}

	// Re-attach to a surviving open ticket if the in-memory session was
	// lost to a restart.
	ticketID, ok := d.dmSessions.Get(m.Author.ID)
	if !ok {
		guildID := d.modmailGuildID(s)
		if guildID == "" {
			log.Warn("modmail DM received with no guild to route to")
			return
		}
		if open := d.v.store.OpenTicketsFor(m.Author.ID, guildID); len(open) > 0 {
			ticketID = open[len(open)-1]
			d.dmSessions.Set(m.Author.ID, ticketID)
			ok = true
		}
	}

	if ok {
		if content == "close" {
			d.closeTicket(ctx, s, ticketID, m.Author.ID)
			return
		}
		d.relayToStaff(s, ticketID, m, content)
		return
	}

	guildID := d.modmailGuildID(s)
	if guildID == "" {
		return
	}
	d.openTicket(ctx, s, guildID, m, content)
}

// modmailGuildID picks the guild modmail tickets are filed under: the
// configured guild when set, otherwise the only guild the bot is in.
func (d *Discord) modmailGuildID(s *discordgo.Session) string {
	if d.config.GuildID != "" {
		return d.config.GuildID
	}
	if s.State != nil && len(s.State.Guilds) > 0 {
		return s.State.Guilds[0].ID
	}
	return ""
}

func (d *Discord) openTicket(
	_ context.Context,
	s *discordgo.Session,
	guildID string,
	m *discordgo.MessageCreate,
	content string,
) {
	log := d.logger.With(
		loggerNameKey, "modmail",
		"user_id", m.Author.ID,
		"guild_id", guildID,
	)

	// Reject before creating any channel so a refusal leaves no orphan.
	if open := d.v.store.OpenTicketsFor(m.Author.ID, guildID); len(open) >= d.v.config.Modmail.MaxOpenTickets {
		_, _ = s.ChannelMessageSend(
			m.ChannelID, fmt.Sprintf(
				"❌ You already have %d open tickets. Please wait for staff to respond.",
				len(open),
			),
		)
		return
	}

	categoryID, err := d.modmailCategory(s, guildID)
	if err != nil {
		log.Error("error resolving modmail category", tint.Err(err))
		_, _ = s.ChannelMessageSend(
			m.ChannelID,
			"❌ Something went wrong opening your ticket. Please try again later.",
		)
		return
	}

	channel, err := s.GuildChannelCreateComplex(
		guildID, discordgo.GuildChannelCreateData{
			Name:     fmt.Sprintf("modmail-%s", strings.ToLower(m.Author.Username)),
			Type:     discordgo.ChannelTypeGuildText,
			ParentID: categoryID,
			Topic:    fmt.Sprintf("Modmail with %s (%s)", m.Author.Username, m.Author.ID),
		},
	)
	if err != nil {
		log.Error("error creating ticket channel", tint.Err(err))
		_, _ = s.ChannelMessageSend(
			m.ChannelID,
			"❌ Something went wrong opening your ticket. Please try again later.",
		)
		return
	}

	ticketID, created := d.v.store.CreateTicket(m.Author.ID, guildID, channel.ID)
	if !created {
		// Lost a race with another DM from the same user.
		_, _ = s.ChannelDelete(channel.ID)
		_, _ = s.ChannelMessageSend(
			m.ChannelID,
			"❌ You already have the maximum number of open tickets.",
		)
		return
	}
	d.dmSessions.Set(m.Author.ID, ticketID)
	d.v.store.AppendTicketMessage(ticketID, m.Author.ID, content)

	log.Info("opened modmail ticket", "ticket_id", ticketID, "channel_id", channel.ID)

	_, err = s.ChannelMessageSendEmbed(
		channel.ID, &discordgo.MessageEmbed{
			Title: "📬 New Ticket",
			Description: fmt.Sprintf(
				"**User:** %s (<@%s>)\n**Opened:** <t:%d:f>\n\n%s",
				m.Author.Username, m.Author.ID, time.Now().Unix(), content,
			),
			Color: 0x5865f2,
			Footer: &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("Ticket %s — use /reply to respond, /close to finish", ticketID),
			},
		},
	)
	if err != nil {
		log.Warn("error posting ticket opener", tint.Err(err))
	}

	_, _ = s.ChannelMessageSend(
		m.ChannelID,
		"📬 Your ticket has been opened! Staff will reply here. "+
			"Send `close` to close it yourself.",
	)
}

// modmailCategory finds the guild's modmail category, preferring the
// configured category ID and falling back to (or creating) one matching
// the configured category name.
func (d *Discord) modmailCategory(s *discordgo.Session, guildID string) (string, error) {
	settings := d.v.store.GuildConfig(guildID)
	if settings.ModmailCategoryID != "" {
		return settings.ModmailCategoryID, nil
	}

	channels, err := s.GuildChannels(guildID)
	if err != nil {
		return "", fmt.Errorf("error listing guild channels: %w", err)
	}
	name := d.v.config.Modmail.CategoryName
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory &&
			strings.EqualFold(ch.Name, name) {
			return ch.ID, nil
		}
	}

	category, err := s.GuildChannelCreate(guildID, name, discordgo.ChannelTypeGuildCategory)
	if err != nil {
		return "", fmt.Errorf("error creating modmail category: %w", err)
	}
	id := category.ID
	d.v.store.MergeGuildConfig(guildID, GuildSettingsPatch{ModmailCategoryID: &id})
	return id, nil
}

// relayToStaff forwards a user's DM into the ticket channel.
func (d *Discord) relayToStaff(
	s *discordgo.Session,
	ticketID string,
	m *discordgo.MessageCreate,
	content string,
) {
	t := d.v.store.Ticket(ticketID)
	if t == nil || t.Status != TicketStatusOpen {
		d.dmSessions.DeleteTicket(ticketID)
		return
	}
	d.v.store.AppendTicketMessage(ticketID, m.Author.ID, content)

	_, err := s.ChannelMessageSendEmbed(
		t.ChannelID, &discordgo.MessageEmbed{
			Author: &discordgo.MessageEmbedAuthor{
				Name:    m.Author.Username,
				IconURL: m.Author.AvatarURL(""),
			},
			Description: content,
			Color:       0x5865f2,
		},
	)
	if err != nil {
		d.logger.Warn(
			"error relaying DM to ticket channel",
			"ticket_id", ticketID,
			tint.Err(err),
		)
		_, _ = s.ChannelMessageSend(
			m.ChannelID,
			"⚠️ I couldn't deliver that message to staff. It has been saved to your ticket.",
		)
	}
}

// handleModmailReply relays a staff reply from a ticket channel to the
// ticket owner's DMs.
func (d *Discord) handleModmailReply(
	ctx context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	message := opts["message"].StringValue()
	staffID := interactionUserID(i)

	ticketID, t := d.v.store.TicketByChannel(i.ChannelID)
	if t == nil {
		d.respond(s, i, "❌ This channel isn't an open ticket.", true)
		return
	}

	dm, err := s.UserChannelCreate(t.UserID)
	if err == nil {
		_, err = s.ChannelMessageSendEmbed(
			dm.ID, &discordgo.MessageEmbed{
				Title:       "📨 Staff Reply",
				Description: message,
				Color:       0x57f287,
			},
		)
	}
	if err != nil {
		d.logFromContext(ctx).Warn(
			"error delivering staff reply",
			"ticket_id", ticketID,
			tint.Err(err),
		)
		d.respond(s, i, "⚠️ I couldn't DM the user, but the reply was recorded.", true)
	} else {
		d.respond(s, i, fmt.Sprintf("📨 Replied to <@%s>.", t.UserID), false)
	}
	d.v.store.AppendTicketMessage(ticketID, staffID, message)
}

// handleModmailClose closes the ticket bound to the current channel.
func (d *Discord) handleModmailClose(
	ctx context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	ticketID, t := d.v.store.TicketByChannel(i.ChannelID)
	if t == nil {
		d.respond(s, i, "❌ This channel isn't an open ticket.", true)
		return
	}
	d.respond(s, i, "🔒 Closing this ticket...", false)
	d.closeTicket(ctx, s, ticketID, interactionUserID(i))
}

// closeTicket performs the full close sequence: store transition,
// transcript to the log channel, user notification, channel removal.
func (d *Discord) closeTicket(
	_ context.Context,
	s *discordgo.Session,
	ticketID string,
	closerID string,
) {
	log := d.logger.With(loggerNameKey, "modmail", "ticket_id", ticketID)

	if !d.v.store.CloseTicket(ticketID, closerID) {
		d.dmSessions.DeleteTicket(ticketID)
		return
	}
	d.dmSessions.DeleteTicket(ticketID)
	t := d.v.store.Ticket(ticketID)
	if t == nil {
		return
	}
	log.Info("closed modmail ticket", "closed_by", closerID)

	settings := d.v.store.GuildConfig(t.GuildID)
	if settings.ModmailLogChannelID != "" {
		_, err := s.ChannelMessageSendEmbed(
			settings.ModmailLogChannelID, ticketTranscript(ticketID, t),
		)
		if err != nil {
			log.Warn("error posting ticket transcript", tint.Err(err))
		}
	}

	if dm, err := s.UserChannelCreate(t.UserID); err == nil {
		_, _ = s.ChannelMessageSend(
			dm.ID,
			"🔒 Your ticket has been closed. Send another message to open a new one.",
		)
	}

	if t.ChannelID != "" {
		if _, err := s.ChannelDelete(t.ChannelID); err != nil {
			log.Warn("error deleting ticket channel", tint.Err(err))
		}
	}
}

func ticketTranscript(ticketID string, t *Ticket) *discordgo.MessageEmbed {
	var sb strings.Builder
	for _, msg := range t.Messages {
		sb.WriteString(
			fmt.Sprintf("<t:%d:t> <@%s>: %s\n", msg.Timestamp, msg.UserID, msg.Content),
		)
	}
	transcript := sb.String()
	if transcript == "" {
		transcript = "_no messages_"
	}

	return &discordgo.MessageEmbed{
		Title: "🔒 Ticket Closed",
		Description: fmt.Sprintf(
			"**Ticket:** %s\n**User:** <@%s>\n**Closed by:** <@%s>\n"+
				"**Opened:** <t:%d:f>\n**Closed:** <t:%d:f>\n\n%s",
			ticketID, t.UserID, t.ClosedBy,
			t.CreatedAt, t.ClosedAt, truncate(transcript, 3000),
		),
		Color: 0xed4245,
	}
}
