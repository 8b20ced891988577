package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vanthabot/vantha/vantha"
)

var (
	cfg        = vantha.DefaultConfig()
	configFile string
)

var rootCmd = &cobra.Command{
	Use: "vantha [flags]",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		err := viper.Unmarshal(
			cfg,
			viper.DecodeHook(
				mapstructure.ComposeDecodeHookFunc(
					mapstructure.StringToTimeDurationHookFunc(),
					LevelToStringHookFunc(),
				),
			),
		)
		if err != nil {
			log.Fatalln(err)
		}
	},
}

func getLogLevel(level string) (slog.Level, error) {
	switch level {
	case slog.LevelDebug.String():
		return slog.LevelDebug, nil
	case slog.LevelInfo.String():
		return slog.LevelInfo, nil
	case slog.LevelWarn.String():
		return slog.LevelWarn, nil
	case slog.LevelError.String():
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

func LevelToStringHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data any,
	) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t.Kind() != reflect.Ptr {
			return data, nil
		}

		typ := t.Elem()

		if typ != reflect.TypeOf(slog.LevelVar{}) {
			return data, nil
		}
		lvl, err := getLogLevel(data.(string))
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %s", data)
		}
		lvlVar := &slog.LevelVar{}
		lvlVar.Set(lvl)
		return lvlVar, nil
	}
}

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	rootCmd.SetContext(ctx)
	signals := make(chan os.Signal, 1)
	signal.Notify(
		signals,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer func() {
		signal.Stop(signals)
		cancel()
	}()
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
			//
		}
	}()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func initConfig() {
	if configFile == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found")
		}
	} else {
		fmt.Println("loading env from file", configFile)
		if err := godotenv.Load(configFile); err != nil {
			log.Println("No .env file found")
		}
	}

	viper.SetDefault("data_dir", vantha.DefaultDataDir)
	viper.SetDefault("flush_interval", vantha.DefaultFlushInterval)
	viper.SetDefault("shutdown_timeout", vantha.DefaultShutdownTimeout)

	viper.SetDefault("log_level", vantha.DefaultLogLevel.String())
	viper.SetDefault("store_log_level", vantha.DefaultStoreLogLevel.String())
	viper.SetDefault("api.log_level", vantha.DefaultAPILogLevel.String())

	// Discord config
	viper.SetDefault("discord.token", "")
	viper.SetDefault("discord.application_id", "")
	viper.SetDefault("discord.guild_id", "")
	viper.SetDefault("discord.notification_channel_id", "")
	viper.SetDefault("discord.startup_message", vantha.DefaultStartupMessage)
	viper.SetDefault(
		"discord.log_level",
		vantha.DefaultDiscordLogLevel.String(),
	)
	viper.SetDefault(
		"discord.discordgo_log_level",
		vantha.DefaultDiscordgoLogLevel.String(),
	)
	viper.SetDefault(
		"discord.gateway_intents",
		vantha.DefaultDiscordGatewayIntents,
	)

	// Economy config
	viper.SetDefault("economy.starting_balance", vantha.DefaultStartingBalance)
	viper.SetDefault("economy.daily_amount", vantha.DefaultDailyAmount)
	viper.SetDefault("economy.daily_cooldown", vantha.DefaultDailyCooldown)
	viper.SetDefault("economy.work_cooldown", vantha.DefaultWorkCooldown)
	viper.SetDefault("economy.work_min", vantha.DefaultWorkMin)
	viper.SetDefault("economy.work_max", vantha.DefaultWorkMax)
	viper.SetDefault("economy.max_balance", vantha.DefaultMaxBalance)
	viper.SetDefault("economy.gamble_max_bet", vantha.DefaultGambleMaxBet)

	// Modmail config
	viper.SetDefault("modmail.max_open_tickets", vantha.DefaultMaxOpenTickets)
	viper.SetDefault("modmail.category_name", vantha.DefaultModmailCategory)
	viper.SetDefault("modmail.sweep_period", vantha.DefaultModmailSweepPeriod)

	// Trigger config
	viper.SetDefault("triggers.max_response_length", vantha.DefaultTriggerMaxLength)
	viper.SetDefault("triggers.cooldown", vantha.DefaultTriggerCooldown)
	viper.SetDefault("triggers.burst", vantha.DefaultTriggerBurst)

	// Moderation config
	viper.SetDefault("moderation.max_warnings", vantha.DefaultMaxWarnings)

	// API config
	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.listen", vantha.DefaultAPIListen)
	viper.SetDefault("api.listen_network", "tcp")
	viper.SetDefault("api.read_timeout", vantha.DefaultAPIReadTimeout)
	viper.SetDefault(
		"api.read_header_timeout",
		vantha.DefaultAPIReadHeaderTimeout,
	)
	viper.SetDefault("api.write_timeout", vantha.DefaultAPIWriteTimeout)
	viper.SetDefault("api.idle_timeout", vantha.DefaultAPIIdleTimeout)

	// API: CORS config
	viper.SetDefault("api.cors.allow_origins", []string{})
	viper.SetDefault("api.cors.allow_methods", []string{})
	viper.SetDefault("api.cors.allow_headers", []string{})

	envPrefix := os.Getenv(vantha.EnvvarSetEnvPrefix)
	if envPrefix == "" {
		envPrefix = vantha.DefaultEnvPrefix
	}
	viper.SetEnvPrefix(envPrefix)

	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()

	// Convert values to correct types
	viper.Set(
		"api.cors.allow_origins",
		viper.GetStringSlice("api.cors.allow_origins"),
	)
	viper.Set(
		"api.cors.allow_methods",
		viper.GetStringSlice("api.cors.allow_methods"),
	)
	viper.Set(
		"api.cors.allow_headers",
		viper.GetStringSlice("api.cors.allow_headers"),
	)

	for _, key := range []string{
		"log_level",
		"store_log_level",
		"discord.log_level",
		"discord.discordgo_log_level",
		"api.log_level",
	} {
		logLevelVar, err := levelStringToLevelVar(viper.GetString(key))
		if err != nil {
			log.Fatalf("error parsing %s: %v", key, err)
		}
		viper.Set(key, logLevelVar)
	}
}

func levelStringToLevelVar(lvl string) (*slog.LevelVar, error) {
	level := &slog.LevelVar{}
	err := level.UnmarshalText([]byte(lvl))
	return level, err
}

//goland:noinspection GoLinter,GoLinter
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&configFile,
		"config",
		"",
		"Config file to use",
	)
}
