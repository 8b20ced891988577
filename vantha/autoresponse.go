package vantha

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
	"golang.org/x/time/rate"
)

// limiterMap holds one auto-response rate limiter per guild.
type limiterMap struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// LoadOrStore returns the existing limiter for the key, or stores and
// returns the given one. The second result is true when the limiter was
// already present.
func (m *limiterMap) LoadOrStore(key string, limiter *rate.Limiter) (*rate.Limiter, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.limiters[key]; ok {
		return existing, true
	}
	if m.limiters == nil {
		m.limiters = map[string]*rate.Limiter{}
	}
	m.limiters[key] = limiter
	return limiter, false
}

// handleAutoResponse replies to guild messages that contain a
// configured trigger. Responses are rate limited per guild so a busy
// channel can't spam matches.
func (d *Discord) handleAutoResponse(
	_ context.Context,
	s *discordgo.Session,
	m *discordgo.MessageCreate,
) {
	trigger, response, ok := d.v.store.MatchTrigger(m.GuildID, m.Content)
	if !ok {
		return
	}
	if !d.guildLimiter(m.GuildID).Allow() {
		return
	}
	d.v.store.RecordTriggerUse(m.GuildID, trigger)

	_, err := s.ChannelMessageSendReply(m.ChannelID, response, m.Reference())
	if err != nil {
		d.logger.Warn(
			"error sending auto-response",
			"guild_id", m.GuildID,
			"channel_id", m.ChannelID,
			tint.Err(err),
		)
	}
}

// handleTrigger manages a guild's trigger rules: add, remove, list.
func (d *Discord) handleTrigger(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	sub := i.ApplicationCommandData().Options[0]
	store := d.v.store

	switch sub.Name {
	case "add":
		opts := subOptionMap(sub)
		trigger := opts["trigger"].StringValue()
		response := opts["response"].StringValue()
		if !store.AddTriggerRule(i.GuildID, trigger, response) {
			d.respond(
				s, i, fmt.Sprintf(
					"❌ Invalid trigger: it must be non-empty and the response at most %d characters.",
					d.v.config.Triggers.MaxResponseLength,
				), true,
			)
			return
		}
		d.respond(
			s, i,
			fmt.Sprintf("✅ Added trigger `%s`.", strings.ToLower(strings.TrimSpace(trigger))),
			false,
		)
	case "remove":
		opts := subOptionMap(sub)
		trigger := opts["trigger"].StringValue()
		if !store.RemoveTriggerRule(i.GuildID, trigger) {
			d.respond(s, i, "❌ No such trigger.", true)
			return
		}
		d.respond(
			s, i,
			fmt.Sprintf("🗑️ Removed trigger `%s`.", strings.ToLower(strings.TrimSpace(trigger))),
			false,
		)
	case "list":
		rules := store.TriggerRules(i.GuildID)
		if len(rules) == 0 {
			d.respond(s, i, "This server has no triggers yet.", true)
			return
		}
		triggers := make([]string, 0, len(rules))
		for t := range rules {
			triggers = append(triggers, t)
		}
		sort.Strings(triggers)

		var lines []string
		for _, t := range triggers {
			rule := rules[t]
			lines = append(
				lines, fmt.Sprintf(
					"`%s` → %s _(used %d times)_",
					t, truncate(rule.Response, 80), rule.Uses,
				),
			)
		}
		d.respondEmbed(
			s, i, &discordgo.MessageEmbed{
				Title:       fmt.Sprintf("💬 Triggers (%d)", len(triggers)),
				Description: truncate(strings.Join(lines, "\n"), 4000),
			}, true,
		)
	}
}
