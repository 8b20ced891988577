package vantha

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSeconds(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "45s", formatSeconds(45))
	assert.Equal(t, "1m", formatSeconds(60))
	assert.Equal(t, "3m", formatSeconds(210))
	assert.Equal(t, "7h", formatSeconds(7*3600+59))
	assert.Equal(t, "2d", formatSeconds(2*86400))
	assert.Equal(t, "0s", formatSeconds(0))
}

func TestParseTimeSpec(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(5400), parseTimeSpec("1h30m"))
	assert.Equal(t, int64(2*86400), parseTimeSpec("2d"))
	assert.Equal(t, int64(45), parseTimeSpec("45"))
	assert.Equal(t, int64(45), parseTimeSpec("45s"))
	assert.Equal(t, int64(604800), parseTimeSpec("1w"))
	assert.Equal(t, int64(90), parseTimeSpec("1M30S"))
	assert.Equal(t, int64(0), parseTimeSpec(""))
	assert.Equal(t, int64(0), parseTimeSpec("soon"))
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "", truncate("", 5))
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	_, ok := ContextLogger(context.Background())
	assert.False(t, ok)

	logger := slog.Default().With("test", t.Name())
	ctx := WithLogger(context.Background(), logger)
	got, ok := ContextLogger(ctx)
	require.True(t, ok)
	assert.Same(t, logger, got)
}

func TestStructToSlogValueRedaction(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Discord.Token = "super-secret-token"

	v := structToSlogValue(cfg)
	require.Equal(t, slog.KindGroup, v.Kind())

	var discordGroup slog.Value
	for _, attr := range v.Group() {
		if attr.Key == "discord" {
			discordGroup = attr.Value
		}
	}
	require.Equal(t, slog.KindGroup, discordGroup.Kind())

	var token string
	for _, attr := range discordGroup.Group() {
		if attr.Key == "token" {
			token = attr.Value.String()
		}
	}
	assert.Equal(t, "[redacted]", token)
	assert.NotContains(t, v.String(), "super-secret-token")
}

func TestGenerateRandomHexString(t *testing.T) {
	t.Parallel()
	a, err := generateRandomHexString(16)
	require.NoError(t, err)
	assert.Len(t, a, 32)

	b, err := generateRandomHexString(16)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
