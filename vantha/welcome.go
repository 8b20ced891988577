package vantha

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

// DefaultWelcomeTemplate greets new members when a guild enables
// welcomes without customizing the message.
const DefaultWelcomeTemplate = "Welcome {user} to **{server}**! You are member #{count}."

// handlerGuildMemberAdd assigns the guild's auto-role and posts the
// welcome message for new members.
func (d *Discord) handlerGuildMemberAdd(_ context.Context) func(
	*discordgo.Session,
	*discordgo.GuildMemberAdd,
) {
	return func(s *discordgo.Session, g *discordgo.GuildMemberAdd) {
		if g.User == nil || g.User.Bot {
			return
		}
		log := d.logger.With(
			loggerNameKey, "welcome",
			"guild_id", g.GuildID,
			"user_id", g.User.ID,
		)
		settings := d.v.store.GuildConfig(g.GuildID)

		if settings.AutoRoleID != "" {
			err := s.GuildMemberRoleAdd(g.GuildID, g.User.ID, settings.AutoRoleID)
			if err != nil {
				log.Warn("error assigning auto-role", tint.Err(err))
			}
		}

		if settings.WelcomeChannelID == "" {
			return
		}
		template := settings.WelcomeTemplate
		if template == "" {
			template = DefaultWelcomeTemplate
		}

		serverName := g.GuildID
		memberCount := 0
		if guild, err := s.State.Guild(g.GuildID); err == nil {
			serverName = guild.Name
			memberCount = guild.MemberCount
		}

		message := renderWelcome(template, g.User.ID, g.User.Username, serverName, memberCount)

		if _, err := s.ChannelMessageSend(settings.WelcomeChannelID, message); err != nil {
			log.Warn("error sending welcome message", tint.Err(err))
		}
	}
}

// renderWelcome fills a welcome template's placeholders.
func renderWelcome(template, userID, username, serverName string, memberCount int) string {
	return strings.NewReplacer(
		"{user}", fmt.Sprintf("<@%s>", userID),
		"{username}", username,
		"{server}", serverName,
		"{count}", fmt.Sprintf("%d", memberCount),
	).Replace(template)
}
