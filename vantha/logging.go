package vantha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

const loggerNameKey = "logger"

var defaultLogWriter io.Writer = os.Stdout

var discordGoLogLevels = map[int]slog.Level{
	0: slog.LevelError,
	1: slog.LevelWarn,
	2: slog.LevelInfo,
	3: slog.LevelDebug,
}

func newLogHandler(level slog.Leveler) slog.Handler {
	return tint.NewHandler(
		defaultLogWriter,
		&tint.Options{
			Level:     level,
			AddSource: true,
		},
	)
}

// discordgoLoggerFunc adapts discordgo's printf-style logger to slog.
func discordgoLoggerFunc(ctx context.Context, handler slog.Handler) func(
	msgL int,
	caller int,
	format string,
	args ...any,
) {
	log := slog.New(handler)
	return func(
		msgL int,
		_ int,
		format string,
		args ...any,
	) {
		level, ok := discordGoLogLevels[msgL]
		if !ok {
			level = slog.LevelInfo
		}
		log.LogAttrs(
			ctx,
			level,
			strings.ReplaceAll(fmt.Sprintf(format, args...), "\n", ""),
		)
	}
}
