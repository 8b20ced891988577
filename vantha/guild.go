package vantha

// GuildSettings is the sparse per-guild configuration. Fields default to
// empty and are only changed by explicit updates.
type GuildSettings struct {
	// ModmailCategoryID is the channel category ticket channels live under
	ModmailCategoryID string `json:"modmail_category"`

	// ModmailLogChannelID receives ticket transcripts on close
	ModmailLogChannelID string `json:"modmail_log_channel"`

	// ModLogChannelID receives moderation action logs
	ModLogChannelID string `json:"mod_log_channel"`

	// MuteRoleID is assigned to muted members
	MuteRoleID string `json:"mute_role"`

	// AutoRoleID is assigned to new members on join
	AutoRoleID string `json:"auto_role"`

	// WelcomeChannelID receives welcome messages for new members
	WelcomeChannelID string `json:"welcome_channel"`

	// WelcomeTemplate supports {user}, {server} and {count} placeholders
	WelcomeTemplate string `json:"welcome_template"`

	// Prefix overrides the bot's default command prefix
	Prefix string `json:"prefix"`

	// Mutes maps muted user IDs to their unmute time (Unix seconds,
	// 0 for indefinite)
	Mutes map[string]int64 `json:"mutes,omitempty"`
}

// GuildSettingsPatch carries a partial update: only non-nil fields are
// applied.
type GuildSettingsPatch struct {
	ModmailCategoryID   *string
	ModmailLogChannelID *string
	ModLogChannelID     *string
	MuteRoleID          *string
	AutoRoleID          *string
	WelcomeChannelID    *string
	WelcomeTemplate     *string
	Prefix              *string
}

func (g *GuildSettings) clone() *GuildSettings {
	c := *g
	c.Mutes = make(map[string]int64, len(g.Mutes))
	for id, expiry := range g.Mutes {
		c.Mutes[id] = expiry
	}
	return &c
}

// guild returns the live settings record, creating an empty one if
// absent. Callers must hold guildsMu.
func (s *Store) guild(guildID string) *GuildSettings {
	g, ok := s.guilds[guildID]
	if !ok {
		g = &GuildSettings{Mutes: map[string]int64{}}
		s.guilds[guildID] = g
		s.markDirty()
	}
	if g.Mutes == nil {
		g.Mutes = map[string]int64{}
	}
	return g
}

// GuildConfig returns a copy of the guild's settings, creating defaults
// if the guild has none yet.
func (s *Store) GuildConfig(guildID string) *GuildSettings {
	s.guildsMu.Lock()
	defer s.guildsMu.Unlock()
	return s.guild(guildID).clone()
}

// MergeGuildConfig applies the non-nil fields of the patch to the
// guild's settings, leaving everything else untouched.
func (s *Store) MergeGuildConfig(guildID string, patch GuildSettingsPatch) *GuildSettings {
	s.guildsMu.Lock()
	defer s.guildsMu.Unlock()
	g := s.guild(guildID)

	if patch.ModmailCategoryID != nil {
		g.ModmailCategoryID = *patch.ModmailCategoryID
	}
	if patch.ModmailLogChannelID != nil {
		g.ModmailLogChannelID = *patch.ModmailLogChannelID
	}
	if patch.ModLogChannelID != nil {
		g.ModLogChannelID = *patch.ModLogChannelID
	}
	if patch.MuteRoleID != nil {
		g.MuteRoleID = *patch.MuteRoleID
	}
	if patch.AutoRoleID != nil {
		g.AutoRoleID = *patch.AutoRoleID
	}
	if patch.WelcomeChannelID != nil {
		g.WelcomeChannelID = *patch.WelcomeChannelID
	}
	if patch.WelcomeTemplate != nil {
		g.WelcomeTemplate = *patch.WelcomeTemplate
	}
	if patch.Prefix != nil {
		g.Prefix = *patch.Prefix
	}

	s.markDirty()
	return g.clone()
}

// SetMute records a mute for the user, with expiresAt in Unix seconds
// (0 for indefinite).
func (s *Store) SetMute(guildID, userID string, expiresAt int64) {
	s.guildsMu.Lock()
	defer s.guildsMu.Unlock()
	g := s.guild(guildID)
	g.Mutes[userID] = expiresAt
	s.markDirty()
}

// ClearMute removes the user's mute record. Returns false if the user
// wasn't muted; timed unmutes use this to no-op when a moderator already
// unmuted manually.
func (s *Store) ClearMute(guildID, userID string) bool {
	s.guildsMu.Lock()
	defer s.guildsMu.Unlock()
	g := s.guild(guildID)
	if _, ok := g.Mutes[userID]; !ok {
		return false
	}
	delete(g.Mutes, userID)
	s.markDirty()
	return true
}

// Muted reports whether the user currently has a mute record in the
// guild.
func (s *Store) Muted(guildID, userID string) bool {
	s.guildsMu.Lock()
	defer s.guildsMu.Unlock()
	_, ok := s.guild(guildID).Mutes[userID]
	return ok
}
