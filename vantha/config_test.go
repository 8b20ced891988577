package vantha

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, 5*time.Minute, cfg.FlushInterval)

	require.NotNil(t, cfg.Economy)
	assert.Equal(t, int64(1000), cfg.Economy.StartingBalance)
	assert.Equal(t, int64(100), cfg.Economy.DailyAmount)
	assert.Equal(t, 24*time.Hour, cfg.Economy.DailyCooldown)
	assert.Equal(t, time.Hour, cfg.Economy.WorkCooldown)
	assert.Equal(t, int64(50), cfg.Economy.WorkMin)
	assert.Equal(t, int64(200), cfg.Economy.WorkMax)

	require.NotNil(t, cfg.Modmail)
	assert.Equal(t, 3, cfg.Modmail.MaxOpenTickets)
	assert.Equal(t, "ModMail", cfg.Modmail.CategoryName)

	require.NotNil(t, cfg.Triggers)
	assert.Equal(t, 500, cfg.Triggers.MaxResponseLength)
	assert.Equal(t, 30*time.Second, cfg.Triggers.Cooldown)
	assert.Equal(t, 5, cfg.Triggers.Burst)

	require.NotNil(t, cfg.API)
	assert.False(t, cfg.API.Enabled)
	assert.Equal(t, DefaultAPIListen, cfg.API.Listen)

	require.NotNil(t, cfg.LogLevel)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel.Level())
}
