package vantha

import (
	"sort"
	"strings"
)

// TriggerRule is a per-guild canned response. Rules are keyed by their
// lowercased trigger text.
type TriggerRule struct {
	Response  string `json:"response"`
	CreatedAt int64  `json:"created_at"`

	// Uses increments every time the rule fires
	Uses int64 `json:"uses"`
}

// AddTriggerRule inserts or replaces the rule for (guild, trigger).
// Triggers are matched case-insensitively, so the key is lowercased.
// Responses longer than the configured maximum are rejected, as are
// empty triggers or responses.
func (s *Store) AddTriggerRule(guildID, trigger, response string) bool {
	trigger = strings.ToLower(strings.TrimSpace(trigger))
	if trigger == "" || response == "" {
		return false
	}
	if s.triggers.MaxResponseLength > 0 && len(response) > s.triggers.MaxResponseLength {
		return false
	}

	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()
	guildRules, ok := s.rules[guildID]
	if !ok {
		guildRules = map[string]*TriggerRule{}
		s.rules[guildID] = guildRules
	}
	guildRules[trigger] = &TriggerRule{
		Response:  response,
		CreatedAt: s.now().Unix(),
	}
	s.markDirty()
	return true
}

// RemoveTriggerRule deletes the rule for (guild, trigger). Returns false
// if no such rule existed.
func (s *Store) RemoveTriggerRule(guildID, trigger string) bool {
	trigger = strings.ToLower(strings.TrimSpace(trigger))

	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()
	guildRules, ok := s.rules[guildID]
	if !ok {
		return false
	}
	if _, ok = guildRules[trigger]; !ok {
		return false
	}
	delete(guildRules, trigger)
	s.markDirty()
	return true
}

// MatchTrigger finds a rule whose trigger is contained in the message
// (case-insensitive) and returns the matched trigger and its response.
// At most one rule matches per message: when several triggers match, the
// longest wins, which keeps matching deterministic and favors the most
// specific rule.
//
// Matching does not count as a use; callers that actually send the
// response call RecordTriggerUse, so rate-limited responses don't
// inflate the counter.
//
// Returns ("", "", false) when nothing matches.
func (s *Store) MatchTrigger(guildID, messageText string) (string, string, bool) {
	text := strings.ToLower(messageText)

	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()
	guildRules, ok := s.rules[guildID]
	if !ok {
		return "", "", false
	}

	var best string
	for trigger := range guildRules {
		if !strings.Contains(text, trigger) {
			continue
		}
		if len(trigger) > len(best) || (len(trigger) == len(best) && trigger < best) {
			best = trigger
		}
	}
	if best == "" {
		return "", "", false
	}
	return best, guildRules[best].Response, true
}

// RecordTriggerUse increments the use counter for (guild, trigger).
// Returns false if the rule no longer exists.
func (s *Store) RecordTriggerUse(guildID, trigger string) bool {
	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()
	rule, ok := s.rules[guildID][trigger]
	if !ok {
		return false
	}
	rule.Uses++
	s.markDirty()
	return true
}

// TriggerRules returns a copy of all rules for a guild, keyed by
// trigger.
func (s *Store) TriggerRules(guildID string) map[string]TriggerRule {
	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()

	rules := map[string]TriggerRule{}
	for trigger, rule := range s.rules[guildID] {
		rules[trigger] = *rule
	}
	return rules
}

// TriggerList returns the guild's triggers sorted alphabetically, for
// display.
func (s *Store) TriggerList(guildID string) []string {
	s.rulesMu.Lock()
	triggers := make([]string, 0, len(s.rules[guildID]))
	for trigger := range s.rules[guildID] {
		triggers = append(triggers, trigger)
	}
	s.rulesMu.Unlock()

	sort.Strings(triggers)
	return triggers
}
