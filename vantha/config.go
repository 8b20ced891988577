//nolint:lll // struct tags can't be split
package vantha

import (
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	EnvvarSetEnvPrefix = "VANTHA_ENV_PREFIX"
	DefaultEnvPrefix   = "VANTHA"

	DefaultDataDir       = "data"
	DefaultFlushInterval = 5 * time.Minute

	DefaultLogLevel          = slog.LevelInfo
	DefaultDiscordLogLevel   = slog.LevelWarn
	DefaultDiscordgoLogLevel = slog.LevelWarn
	DefaultStoreLogLevel     = slog.LevelInfo
	DefaultAPILogLevel       = slog.LevelInfo

	DefaultStartingBalance = 1000
	DefaultDailyAmount     = 100
	DefaultDailyCooldown   = 24 * time.Hour
	DefaultWorkCooldown    = time.Hour
	DefaultWorkMin         = 50
	DefaultWorkMax         = 200
	DefaultMaxBalance      = 1_000_000
	DefaultGambleMaxBet    = 10_000

	DefaultMaxOpenTickets     = 3
	DefaultModmailCategory    = "ModMail"
	DefaultModmailSweepPeriod = 10 * time.Minute

	DefaultTriggerMaxLength    = 500
	DefaultTriggerCooldown     = 30 * time.Second
	DefaultTriggerBurst        = 5
	DefaultMaxWarnings         = 3
	DefaultShutdownTimeout     = 30 * time.Second
	DefaultStartupMessage      = "Vantha is here!"
	DefaultDiscordGatewayIntents = discordgo.IntentsAllWithoutPrivileged |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	DefaultAPIListen            = "127.0.0.1:5000"
	defaultListenNetwork        = "tcp"
	DefaultAPIReadTimeout       = 5 * time.Second
	DefaultAPIReadHeaderTimeout = 5 * time.Second
	DefaultAPIWriteTimeout      = 10 * time.Second
	DefaultAPIIdleTimeout       = 30 * time.Second
)

// Config is the top-level bot configuration. It's populated from a YAML
// config file and/or environment variables via viper (see cmd/root.go).
type Config struct {
	// DataDir is the directory holding the store's JSON table files
	DataDir string `yaml:"data_dir" mapstructure:"data_dir" json:"data_dir"`

	// FlushInterval sets how often the store's tables are written to disk
	FlushInterval time.Duration `yaml:"flush_interval" mapstructure:"flush_interval" json:"flush_interval"`

	// LogLevel is the base log level, for the default logger
	LogLevel *slog.LevelVar `yaml:"log_level" mapstructure:"log_level" json:"log_level"`

	// StoreLogLevel sets the log level for record store operations
	StoreLogLevel *slog.LevelVar `yaml:"store_log_level" mapstructure:"store_log_level" json:"store_log_level"`

	// Discord configures the Discord bot itself
	Discord *DiscordConfig `yaml:"discord" mapstructure:"discord" json:"discord"`

	// Economy holds balances, rewards and cooldowns
	Economy *EconomyConfig `yaml:"economy" mapstructure:"economy" json:"economy"`

	// Modmail configures the support ticket system
	Modmail *ModmailConfig `yaml:"modmail" mapstructure:"modmail" json:"modmail"`

	// Triggers configures auto-responses
	Triggers *TriggerConfig `yaml:"triggers" mapstructure:"triggers" json:"triggers"`

	// Moderation configures warnings and mutes
	Moderation *ModerationConfig `yaml:"moderation" mapstructure:"moderation" json:"moderation"`

	// API configures the optional status/health HTTP server
	API *APIConfig `yaml:"api" mapstructure:"api" json:"api"`

	// ShutdownTimeout is the time to allow for a graceful shutdown. After
	// this elapses, remaining connections are force-closed.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
}

// DiscordConfig configures the Discord connection.
//
//nolint:lll // can't break tags
type DiscordConfig struct {
	// Discord bot token (from the 'Bot' tab in the discord dev portal)
	Token string `yaml:"token" mapstructure:"token" json:"token" log:"[redacted]" binding:"required"`

	// Discord application ID
	ApplicationID string `yaml:"application_id" mapstructure:"application_id" json:"application_id" binding:"required"`

	// GuildID specifies the guild ID used when registering slash commands.
	// Leave empty for commands to be registered as global.
	GuildID string `yaml:"guild_id" mapstructure:"guild_id" json:"guild_id"`

	// NotificationChannelID, if set, receives StartupMessage on connect
	NotificationChannelID string `yaml:"notification_channel_id" mapstructure:"notification_channel_id" json:"notification_channel_id"`

	// StartupMessage is sent to NotificationChannelID when the gateway connects
	StartupMessage string `yaml:"startup_message" mapstructure:"startup_message" json:"startup_message"`

	// GatewayIntents for the session. Modmail and auto-responses need
	// message content and guild member intents.
	GatewayIntents discordgo.Intent `yaml:"gateway_intents" mapstructure:"gateway_intents" json:"gateway_intents"`

	// Base discord logging level
	LogLevel *slog.LevelVar `yaml:"log_level" mapstructure:"log_level" json:"log_level"`

	// Log level for the `discordgo` library's logger
	DiscordGoLogLevel *slog.LevelVar `yaml:"discordgo_log_level" mapstructure:"discordgo_log_level" json:"discordgo_log_level"`
}

// EconomyConfig holds the tunables for the economy system. These are
// consumed by the record store (cooldowns, starting balance) and by the
// economy commands (reward ranges, bet caps).
type EconomyConfig struct {
	// StartingBalance is the balance a new account is created with
	StartingBalance int64 `yaml:"starting_balance" mapstructure:"starting_balance" json:"starting_balance"`

	// DailyAmount is credited by a successful daily claim
	DailyAmount int64 `yaml:"daily_amount" mapstructure:"daily_amount" json:"daily_amount"`

	// DailyCooldown is the window between daily claims
	DailyCooldown time.Duration `yaml:"daily_cooldown" mapstructure:"daily_cooldown" json:"daily_cooldown"`

	// WorkCooldown is the window between work claims
	WorkCooldown time.Duration `yaml:"work_cooldown" mapstructure:"work_cooldown" json:"work_cooldown"`

	// WorkMin and WorkMax bound the random work reward
	WorkMin int64 `yaml:"work_min" mapstructure:"work_min" json:"work_min"`
	WorkMax int64 `yaml:"work_max" mapstructure:"work_max" json:"work_max"`

	// MaxBalance is advisory; balances are not currently capped
	MaxBalance int64 `yaml:"max_balance" mapstructure:"max_balance" json:"max_balance"`

	// GambleMaxBet caps a single gamble wager
	GambleMaxBet int64 `yaml:"gamble_max_bet" mapstructure:"gamble_max_bet" json:"gamble_max_bet"`
}

// ModmailConfig configures support tickets.
type ModmailConfig struct {
	// MaxOpenTickets limits simultaneously open tickets per (user, guild)
	MaxOpenTickets int `yaml:"max_open_tickets" mapstructure:"max_open_tickets" json:"max_open_tickets"`

	// CategoryName is the channel category ticket channels are created under
	CategoryName string `yaml:"category_name" mapstructure:"category_name" json:"category_name"`

	// SweepPeriod is how often tickets are checked for deleted channels.
	// A ticket whose channel no longer exists is implicitly closed.
	SweepPeriod time.Duration `yaml:"sweep_period" mapstructure:"sweep_period" json:"sweep_period"`
}

// TriggerConfig configures auto-responses.
type TriggerConfig struct {
	// MaxResponseLength caps trigger response text
	MaxResponseLength int `yaml:"max_response_length" mapstructure:"max_response_length" json:"max_response_length"`

	// Cooldown is the per-guild sustained rate for firing responses
	Cooldown time.Duration `yaml:"cooldown" mapstructure:"cooldown" json:"cooldown"`

	// Burst is how many responses may fire back-to-back before the
	// cooldown applies
	Burst int `yaml:"burst" mapstructure:"burst" json:"burst"`
}

// ModerationConfig configures warnings.
type ModerationConfig struct {
	// MaxWarnings is the per-guild count at which staff are nudged to act
	MaxWarnings int `yaml:"max_warnings" mapstructure:"max_warnings" json:"max_warnings"`
}

// APIConfig configures the status/health HTTP server.
//
//nolint:lll // can't break tags
type APIConfig struct {
	// Enabled determines whether the server runs at all
	Enabled bool `yaml:"enabled" mapstructure:"enabled" json:"enabled"`

	// The address and port on which the server should listen (e.g., "127.0.0.1:5000")
	Listen string `yaml:"listen" mapstructure:"listen" json:"listen" binding:"required_if=Enabled true,hostname|filepath"`

	// The network type for listening (e.g., "tcp", "tcp4", "tcp6", "unix")
	ListenNetwork string `yaml:"listen_network" mapstructure:"listen_network" json:"listen_network" binding:"required_if=Enabled true,oneof=tcp tcp4 tcp6 unix"`

	// The logging level for the API server
	LogLevel *slog.LevelVar `yaml:"log_level" mapstructure:"log_level" json:"log_level"`

	// Cross-origin configuration
	CORS CORSConfig `yaml:"cors" mapstructure:"cors" json:"cors"`

	// Maximum duration for reading the entire request, including the body
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" json:"read_timeout"`

	// Amount of time allowed to read request headers
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" mapstructure:"read_header_timeout" json:"read_header_timeout"`

	// Maximum duration before timing out writes of the response
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" json:"write_timeout"`

	// Maximum amount of time to wait for the next request when keep-alives are enabled
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" json:"idle_timeout"`
}

// CORSConfig specifies cross-origin resource sharing settings
type CORSConfig struct {
	AllowOrigins []string      `yaml:"allow_origins" mapstructure:"allow_origins" json:"allow_origins"`
	AllowMethods []string      `yaml:"allow_methods" mapstructure:"allow_methods" json:"allow_methods"`
	AllowHeaders []string      `yaml:"allow_headers" mapstructure:"allow_headers" json:"allow_headers"`
	MaxAge       time.Duration `yaml:"max_age" mapstructure:"max_age" json:"max_age"`
}

func (c Config) LogValue() slog.Value {
	return structToSlogValue(c)
}

// DefaultConfig returns a Config with all default settings populated
func DefaultConfig() *Config {
	mainLogLevel := &slog.LevelVar{}
	storeLogLevel := &slog.LevelVar{}
	discordLogLevel := &slog.LevelVar{}
	discordgoLogLevel := &slog.LevelVar{}
	apiLogLevel := &slog.LevelVar{}

	mainLogLevel.Set(DefaultLogLevel)
	storeLogLevel.Set(DefaultStoreLogLevel)
	discordLogLevel.Set(DefaultDiscordLogLevel)
	discordgoLogLevel.Set(DefaultDiscordgoLogLevel)
	apiLogLevel.Set(DefaultAPILogLevel)

	return &Config{
		DataDir:         DefaultDataDir,
		FlushInterval:   DefaultFlushInterval,
		LogLevel:        mainLogLevel,
		StoreLogLevel:   storeLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		Discord: &DiscordConfig{
			GatewayIntents:    DefaultDiscordGatewayIntents,
			StartupMessage:    DefaultStartupMessage,
			LogLevel:          discordLogLevel,
			DiscordGoLogLevel: discordgoLogLevel,
		},
		Economy: &EconomyConfig{
			StartingBalance: DefaultStartingBalance,
			DailyAmount:     DefaultDailyAmount,
			DailyCooldown:   DefaultDailyCooldown,
			WorkCooldown:    DefaultWorkCooldown,
			WorkMin:         DefaultWorkMin,
			WorkMax:         DefaultWorkMax,
			MaxBalance:      DefaultMaxBalance,
			GambleMaxBet:    DefaultGambleMaxBet,
		},
		Modmail: &ModmailConfig{
			MaxOpenTickets: DefaultMaxOpenTickets,
			CategoryName:   DefaultModmailCategory,
			SweepPeriod:    DefaultModmailSweepPeriod,
		},
		Triggers: &TriggerConfig{
			MaxResponseLength: DefaultTriggerMaxLength,
			Cooldown:          DefaultTriggerCooldown,
			Burst:             DefaultTriggerBurst,
		},
		Moderation: &ModerationConfig{
			MaxWarnings: DefaultMaxWarnings,
		},
		API: &APIConfig{
			Enabled:           false,
			Listen:            DefaultAPIListen,
			ListenNetwork:     defaultListenNetwork,
			LogLevel:          apiLogLevel,
			ReadTimeout:       DefaultAPIReadTimeout,
			ReadHeaderTimeout: DefaultAPIReadHeaderTimeout,
			WriteTimeout:      DefaultAPIWriteTimeout,
			IdleTimeout:       DefaultAPIIdleTimeout,
		},
	}
}
