package vantha

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

func (d *Discord) handleWarn(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()
	moderatorID := interactionUserID(i)

	if target.ID == moderatorID {
		d.respond(s, i, "❌ You cannot warn yourself.", true)
		return
	}
	if target.Bot {
		d.respond(s, i, "❌ You cannot warn bots.", true)
		return
	}

	count := d.v.store.AddWarning(target.ID, i.GuildID, reason, moderatorID)

	msg := fmt.Sprintf(
		"⚠️ Warned <@%s> (warning #%d here)\n**Reason:** %s",
		target.ID, count, reason,
	)
	if max := d.v.config.Moderation.MaxWarnings; max > 0 && count >= max {
		msg += fmt.Sprintf(
			"\n🚨 This user has reached %d warnings — consider further action.",
			count,
		)
	}
	d.respond(s, i, msg, false)
	d.modLog(
		s, i.GuildID, fmt.Sprintf(
			"⚠️ **Warn** — <@%s> warned by <@%s>: %s (warning #%d)",
			target.ID, moderatorID, reason, count,
		),
	)
}

func (d *Discord) handleWarnings(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)

	warnings := d.v.store.UserWarnings(target.ID, i.GuildID)
	if len(warnings) == 0 {
		d.respond(s, i, fmt.Sprintf("<@%s> has no warnings in this server.", target.ID), true)
		return
	}

	var lines []string
	for idx, w := range warnings {
		lines = append(
			lines, fmt.Sprintf(
				"%d. %s — by <@%s> on <t:%d:d>",
				idx+1, w.Reason, w.ModeratorID, w.Timestamp,
			),
		)
	}
	d.respondEmbed(
		s, i, &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("⚠️ Warnings for %s", target.Username),
			Description: strings.Join(lines, "\n"),
		}, true,
	)
}

func (d *Discord) handleKick(
	ctx context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	reason := "No reason provided"
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}
	moderatorID := interactionUserID(i)

	if target.ID == moderatorID {
		d.respond(s, i, "❌ You cannot kick yourself.", true)
		return
	}

	if err := s.GuildMemberDeleteWithReason(i.GuildID, target.ID, reason); err != nil {
		d.logFromContext(ctx).Warn("kick failed", tint.Err(err))
		d.respond(s, i, "❌ I couldn't kick this user.", true)
		return
	}

	d.respond(
		s, i, fmt.Sprintf("👢 Kicked <@%s>\n**Reason:** %s", target.ID, reason),
		false,
	)
	d.modLog(
		s, i.GuildID, fmt.Sprintf(
			"👢 **Kick** — <@%s> kicked by <@%s>: %s", target.ID, moderatorID, reason,
		),
	)
}

func (d *Discord) handleBan(
	ctx context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	reason := "No reason provided"
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}
	var deleteDays int
	if opt, ok := opts["delete_days"]; ok {
		deleteDays = int(opt.IntValue())
	}
	moderatorID := interactionUserID(i)

	switch {
	case target.ID == moderatorID:
		d.respond(s, i, "❌ You cannot ban yourself.", true)
		return
	case deleteDays < 0 || deleteDays > 7:
		d.respond(s, i, "❌ Delete days must be between 0 and 7.", true)
		return
	}

	err := s.GuildBanCreateWithReason(i.GuildID, target.ID, reason, deleteDays)
	if err != nil {
		d.logFromContext(ctx).Warn("ban failed", tint.Err(err))
		d.respond(s, i, "❌ I couldn't ban this user.", true)
		return
	}

	d.respond(
		s, i, fmt.Sprintf("🔨 Banned <@%s>\n**Reason:** %s", target.ID, reason),
		false,
	)
	d.modLog(
		s, i.GuildID, fmt.Sprintf(
			"🔨 **Ban** — <@%s> banned by <@%s>: %s", target.ID, moderatorID, reason,
		),
	)
}

func (d *Discord) handleUnban(
	ctx context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	// Banned users can't be picked from the member list, so the command
	// takes a raw user ID.
	userID := strings.TrimSpace(opts["user_id"].StringValue())
	reason := "No reason provided"
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}
	moderatorID := interactionUserID(i)

	if err := s.GuildBanDelete(i.GuildID, userID); err != nil {
		d.logFromContext(ctx).Warn("unban failed", tint.Err(err))
		d.respond(s, i, "❌ I couldn't unban that user. Is the ID correct?", true)
		return
	}

	d.respond(
		s, i, fmt.Sprintf("🔓 Unbanned <@%s>\n**Reason:** %s", userID, reason),
		false,
	)
	d.modLog(
		s, i.GuildID, fmt.Sprintf(
			"🔓 **Unban** — <@%s> unbanned by <@%s>: %s", userID, moderatorID, reason,
		),
	)
}

func (d *Discord) handlePurge(
	ctx context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	amount := int(opts["amount"].IntValue())
	if amount < 1 || amount > 100 {
		d.respond(s, i, "❌ Amount must be between 1 and 100.", true)
		return
	}

	var filterUserID string
	if opt, ok := opts["user"]; ok {
		filterUserID = opt.UserValue(s).ID
	}

	messages, err := s.ChannelMessages(i.ChannelID, 100, "", "", "")
	if err != nil {
		d.logFromContext(ctx).Warn("purge message fetch failed", tint.Err(err))
		d.respond(s, i, "❌ I couldn't read this channel's messages.", true)
		return
	}

	var ids []string
	for _, m := range messages {
		if filterUserID != "" && m.Author.ID != filterUserID {
			continue
		}
		ids = append(ids, m.ID)
		if len(ids) == amount {
			break
		}
	}
	if len(ids) == 0 {
		d.respond(s, i, "❌ Nothing to delete.", true)
		return
	}

	if err := s.ChannelMessagesBulkDelete(i.ChannelID, ids); err != nil {
		d.logFromContext(ctx).Warn("purge bulk delete failed", tint.Err(err))
		d.respond(s, i, "❌ I couldn't delete those messages.", true)
		return
	}

	d.respond(s, i, fmt.Sprintf("🧹 Deleted %d messages.", len(ids)), true)
	d.modLog(
		s, i.GuildID, fmt.Sprintf(
			"🧹 **Purge** — %d messages deleted in <#%s> by <@%s>",
			len(ids), i.ChannelID, interactionUserID(i),
		),
	)
}

func (d *Discord) handleMute(
	ctx context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	moderatorID := interactionUserID(i)

	var durationSeconds int64
	if opt, ok := opts["duration"]; ok {
		durationSeconds = parseTimeSpec(opt.StringValue())
	}
	reason := "No reason provided"
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	settings := d.v.store.GuildConfig(i.GuildID)
	if settings.MuteRoleID == "" {
		d.respond(
			s, i,
			"❌ No mute role configured. Set one with `/settings set key:Mute role`.",
			true,
		)
		return
	}

	if err := s.GuildMemberRoleAdd(i.GuildID, target.ID, settings.MuteRoleID); err != nil {
		d.logFromContext(ctx).Warn("mute role add failed", tint.Err(err))
		d.respond(s, i, "❌ I couldn't assign the mute role.", true)
		return
	}

	var expiresAt int64
	msg := fmt.Sprintf("🔇 Muted <@%s>\n**Reason:** %s", target.ID, reason)
	if durationSeconds > 0 {
		expiresAt = time.Now().Unix() + durationSeconds
		msg += fmt.Sprintf("\n**Duration:** %s", formatSeconds(durationSeconds))
	}
	d.v.store.SetMute(i.GuildID, target.ID, expiresAt)

	if durationSeconds > 0 {
		d.scheduleUnmute(
			ctx, s, i.GuildID, target.ID,
			time.Duration(durationSeconds)*time.Second,
		)
	}

	d.respond(s, i, msg, false)
	d.modLog(
		s, i.GuildID, fmt.Sprintf(
			"🔇 **Mute** — <@%s> muted by <@%s>: %s", target.ID, moderatorID, reason,
		),
	)
}

// scheduleUnmute lifts a timed mute after the given delay. The timer is
// not cancellable; instead it re-checks the mute record at fire time and
// no-ops if a moderator already unmuted the user manually.
func (d *Discord) scheduleUnmute(
	ctx context.Context,
	s *discordgo.Session,
	guildID, userID string,
	after time.Duration,
) {
	log := d.logger.With("guild_id", guildID, "user_id", userID)
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(after):
		}

		if !d.v.store.ClearMute(guildID, userID) {
			log.Debug("timed unmute skipped, user already unmuted")
			return
		}
		settings := d.v.store.GuildConfig(guildID)
		if settings.MuteRoleID == "" {
			return
		}
		err := s.GuildMemberRoleRemove(guildID, userID, settings.MuteRoleID)
		if err != nil {
			log.Warn("timed unmute role removal failed", tint.Err(err))
			return
		}
		log.Info("timed unmute applied")
		d.modLog(s, guildID, fmt.Sprintf("🔊 **Unmute** — <@%s> (timed mute expired)", userID))
	}()
}

func (d *Discord) handleUnmute(
	ctx context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	moderatorID := interactionUserID(i)

	if !d.v.store.ClearMute(i.GuildID, target.ID) {
		d.respond(s, i, "❌ This user isn't muted.", true)
		return
	}

	settings := d.v.store.GuildConfig(i.GuildID)
	if settings.MuteRoleID != "" {
		err := s.GuildMemberRoleRemove(i.GuildID, target.ID, settings.MuteRoleID)
		if err != nil {
			d.logFromContext(ctx).Warn("unmute role removal failed", tint.Err(err))
		}
	}

	d.respond(s, i, fmt.Sprintf("🔊 Unmuted <@%s>.", target.ID), false)
	d.modLog(
		s, i.GuildID,
		fmt.Sprintf("🔊 **Unmute** — <@%s> unmuted by <@%s>", target.ID, moderatorID),
	)
}

func (d *Discord) handleSettings(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	sub := i.ApplicationCommandData().Options[0]
	store := d.v.store

	switch sub.Name {
	case "show":
		settings := store.GuildConfig(i.GuildID)
		d.respondEmbed(
			s, i, &discordgo.MessageEmbed{
				Title: "⚙️ Server Settings",
				Description: fmt.Sprintf(
					"**Mod log channel:** %s\n"+
						"**Modmail log channel:** %s\n"+
						"**Modmail category:** %s\n"+
						"**Mute role:** %s\n"+
						"**Auto role:** %s\n"+
						"**Welcome channel:** %s\n"+
						"**Welcome template:** %s\n"+
						"**Prefix:** %s",
					orUnset(settings.ModLogChannelID),
					orUnset(settings.ModmailLogChannelID),
					orUnset(settings.ModmailCategoryID),
					orUnset(settings.MuteRoleID),
					orUnset(settings.AutoRoleID),
					orUnset(settings.WelcomeChannelID),
					orUnset(settings.WelcomeTemplate),
					orUnset(settings.Prefix),
				),
			}, true,
		)
	case "set":
		opts := subOptionMap(sub)
		key := opts["key"].StringValue()
		value := opts["value"].StringValue()

		var patch GuildSettingsPatch
		switch key {
		case settingModLogChannel:
			patch.ModLogChannelID = &value
		case settingModmailLogChannel:
			patch.ModmailLogChannelID = &value
		case settingModmailCategory:
			patch.ModmailCategoryID = &value
		case settingMuteRole:
			patch.MuteRoleID = &value
		case settingAutoRole:
			patch.AutoRoleID = &value
		case settingWelcomeChannel:
			patch.WelcomeChannelID = &value
		case settingWelcomeTemplate:
			patch.WelcomeTemplate = &value
		case settingPrefix:
			patch.Prefix = &value
		default:
			d.respond(s, i, "❌ Unknown setting.", true)
			return
		}
		store.MergeGuildConfig(i.GuildID, patch)
		d.respond(s, i, fmt.Sprintf("✅ Updated `%s`.", key), true)
	}
}

func orUnset(s string) string {
	if s == "" {
		return "_unset_"
	}
	return s
}

// logFromContext returns the per-command logger placed on the context by
// the interaction dispatcher, or the base Discord logger.
func (d *Discord) logFromContext(ctx context.Context) *slog.Logger {
	if log, ok := ContextLogger(ctx); ok {
		return log
	}
	return d.logger
}
