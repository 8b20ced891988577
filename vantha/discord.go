package vantha

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
	"golang.org/x/time/rate"
)

// Discord manages the gateway session: handler registration, slash
// command sync, the modmail DM sessions and the per-guild auto-response
// limiters.
type Discord struct {
	session *discordgo.Session
	config  *DiscordConfig
	logger  *slog.Logger
	v       *Vantha

	connected         atomic.Bool
	metricConnects    atomic.Int64
	metricDisconnects atomic.Int64

	removeHandlerFuncs []func()

	// dmSessions maps a user ID to the ticket ID of their active modmail
	// conversation
	dmSessions dmSessionMap

	// triggerLimiters holds one rate.Limiter per guild for auto-responses
	triggerLimiters limiterMap
}

func newDiscord(v *Vantha, config *DiscordConfig) (*Discord, error) {
	d := &Discord{
		config:             config,
		v:                  v,
		removeHandlerFuncs: []func(){},
	}
	d.logger = slog.New(newLogHandler(config.LogLevel)).With(loggerNameKey, "discord")

	discordgo.Logger = discordgoLoggerFunc(
		context.Background(),
		newLogHandler(config.DiscordGoLogLevel).WithAttrs(
			[]slog.Attr{slog.String(loggerNameKey, "discordgo")},
		),
	)

	session, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	session.Identify.Intents = config.GatewayIntents
	session.StateEnabled = true
	d.session = session

	return d, nil
}

// open registers handlers, connects the gateway and syncs slash
// commands.
func (d *Discord) open(ctx context.Context) error {
	handlers := []any{
		d.handlerReady(),
		d.handlerConnect(),
		d.handlerDisconnect(),
		d.handlerInteractionCreate(ctx),
		d.handlerMessageCreate(ctx),
		d.handlerGuildMemberAdd(ctx),
	}
	for _, h := range handlers {
		d.removeHandlerFuncs = append(d.removeHandlerFuncs, d.session.AddHandler(h))
	}

	if err := d.session.Open(); err != nil {
		return err
	}

	if err := d.registerCommands(); err != nil {
		d.logger.Error("error registering commands", tint.Err(err))
		_ = d.session.Close()
		return err
	}
	return nil
}

func (d *Discord) close() error {
	for _, remove := range d.removeHandlerFuncs {
		remove()
	}
	d.removeHandlerFuncs = nil
	return d.session.Close()
}

func (d *Discord) handlerReady() func(*discordgo.Session, *discordgo.Ready) {
	return func(_ *discordgo.Session, r *discordgo.Ready) {
		d.logger.Info(
			"discord ready",
			"username", r.User.Username,
			"guilds", len(r.Guilds),
		)
	}
}

func (d *Discord) handlerConnect() func(*discordgo.Session, *discordgo.Connect) {
	return func(s *discordgo.Session, _ *discordgo.Connect) {
		d.connected.Store(true)
		d.metricConnects.Add(1)
		d.logger.Info("connected to discord gateway")

		if d.config.NotificationChannelID != "" && d.config.StartupMessage != "" {
			_, err := s.ChannelMessageSend(
				d.config.NotificationChannelID,
				d.config.StartupMessage,
			)
			if err != nil {
				d.logger.Warn("error sending startup message", tint.Err(err))
			}
		}
	}
}

func (d *Discord) handlerDisconnect() func(*discordgo.Session, *discordgo.Disconnect) {
	return func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		d.connected.Store(false)
		d.metricDisconnects.Add(1)
		d.logger.Warn("disconnected from discord gateway")
	}
}

// Connected reports whether the gateway connection is currently up.
func (d *Discord) Connected() bool {
	return d.connected.Load()
}

// registerCommands upserts the bot's slash commands, either globally or
// scoped to the configured guild.
func (d *Discord) registerCommands() error {
	commands := applicationCommands()
	_, err := d.session.ApplicationCommandBulkOverwrite(
		d.config.ApplicationID,
		d.config.GuildID,
		commands,
	)
	if err != nil {
		return fmt.Errorf("error registering %d commands: %w", len(commands), err)
	}
	d.logger.Info(
		"registered slash commands",
		"count", len(commands),
		"guild_id", d.config.GuildID,
	)
	return nil
}

// handlerInteractionCreate dispatches slash commands by name.
func (d *Discord) handlerInteractionCreate(ctx context.Context) func(
	*discordgo.Session,
	*discordgo.InteractionCreate,
) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		name := i.ApplicationCommandData().Name
		handler, ok := d.commandHandlers()[name]
		if !ok {
			d.logger.Warn("unknown command", "name", name)
			return
		}

		log := d.logger.With(
			"command", name,
			"guild_id", i.GuildID,
			"user_id", interactionUserID(i),
		)
		log.Info("handling command")
		handler(WithLogger(ctx, log), s, i)
	}
}

func (d *Discord) commandHandlers() map[string]commandHandlerFunc {
	return map[string]commandHandlerFunc{
		"balance":     d.handleBalance,
		"daily":       d.handleDaily,
		"work":        d.handleWork,
		"pay":         d.handlePay,
		"gamble":      d.handleGamble,
		"shop":        d.handleShop,
		"buy":         d.handleBuy,
		"sell":        d.handleSell,
		"eco":         d.handleEco,
		"inventory":   d.handleInventory,
		"leaderboard": d.handleLeaderboard,
		"warn":        d.handleWarn,
		"warnings":    d.handleWarnings,
		"kick":        d.handleKick,
		"ban":         d.handleBan,
		"unban":       d.handleUnban,
		"purge":       d.handlePurge,
		"mute":        d.handleMute,
		"unmute":      d.handleUnmute,
		"poll":        d.handlePoll,
		"flip":        d.handleFlip,
		"roll":        d.handleRoll,
		"choose":      d.handleChoose,
		"8ball":       d.handleEightBall,
		"trigger":     d.handleTrigger,
		"reply":       d.handleModmailReply,
		"close":       d.handleModmailClose,
		"settings":    d.handleSettings,
	}
}

type commandHandlerFunc func(
	ctx context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
)

// handlerMessageCreate routes plain messages: DMs feed modmail, guild
// messages feed auto-responses.
func (d *Discord) handlerMessageCreate(ctx context.Context) func(
	*discordgo.Session,
	*discordgo.MessageCreate,
) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		if m.GuildID == "" {
			d.handleModmailDM(ctx, s, m)
			return
		}
		d.handleAutoResponse(ctx, s, m)
	}
}

// interactionUserID returns the invoking user's ID for both guild and
// DM interactions.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// respond sends an interaction response with plain content.
func (d *Discord) respond(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	content string,
	ephemeral bool,
) {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(
		i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   flags,
			},
		},
	)
	if err != nil {
		d.logger.Error("error responding to interaction", tint.Err(err))
	}
}

// respondEmbed sends an interaction response with a single embed.
func (d *Discord) respondEmbed(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	embed *discordgo.MessageEmbed,
	ephemeral bool,
) {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(
		i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{embed},
				Flags:  flags,
			},
		},
	)
	if err != nil {
		d.logger.Error("error responding to interaction", tint.Err(err))
	}
}

// guildLimiter returns (creating if needed) the guild's auto-response
// limiter.
func (d *Discord) guildLimiter(guildID string) *rate.Limiter {
	cfg := d.v.config.Triggers
	limit := rate.Inf
	if cfg.Cooldown > 0 {
		limit = rate.Every(cfg.Cooldown)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	limiter, _ := d.triggerLimiters.LoadOrStore(guildID, rate.NewLimiter(limit, burst))
	return limiter
}

// modLog sends a moderation log line to the guild's configured mod-log
// channel, if any.
func (d *Discord) modLog(s *discordgo.Session, guildID, message string) {
	settings := d.v.store.GuildConfig(guildID)
	if settings.ModLogChannelID == "" {
		return
	}
	if _, err := s.ChannelMessageSend(settings.ModLogChannelID, message); err != nil {
		d.logger.Warn("error sending mod log", "guild_id", guildID, tint.Err(err))
	}
}

// optionMap indexes an interaction's options by name.
func optionMap(
	i *discordgo.InteractionCreate,
) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(
		map[string]*discordgo.ApplicationCommandInteractionDataOption,
		len(options),
	)
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func subOptionMap(
	sub *discordgo.ApplicationCommandInteractionDataOption,
) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(
		map[string]*discordgo.ApplicationCommandInteractionDataOption,
		len(sub.Options),
	)
	for _, opt := range sub.Options {
		m[opt.Name] = opt
	}
	return m
}

// runTicketSweep periodically closes tickets whose channels no longer
// exist: channel deletion is detected by absence, not events.
func (d *Discord) runTicketSweep(ctx context.Context) {
	period := d.v.config.Modmail.SweepPeriod
	if period <= 0 {
		period = DefaultModmailSweepPeriod
	}
	log := d.logger.With(loggerNameKey, "ticket_sweep")

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for ticketID, channelID := range d.v.store.OpenTickets() {
				_, err := d.session.Channel(channelID)
				if err == nil {
					continue
				}
				// Only a confirmed 404 means the channel is gone; rate
				// limits and transient API errors leave the ticket alone
				// until the next pass.
				if !isUnknownChannel(err) {
					log.Warn(
						"could not check ticket channel, skipping",
						"ticket_id", ticketID,
						"channel_id", channelID,
						tint.Err(err),
					)
					continue
				}
				if d.v.store.CloseTicket(ticketID, "") {
					log.Info(
						"closed ticket with missing channel",
						"ticket_id", ticketID,
						"channel_id", channelID,
					)
					d.dmSessions.DeleteTicket(ticketID)
				}
			}
		}
	}
}

// isUnknownChannel reports whether the error is Discord telling us the
// channel does not exist, as opposed to a transient API failure.
func isUnknownChannel(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownChannel {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
