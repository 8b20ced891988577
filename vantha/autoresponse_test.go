package vantha

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestLimiterMapLoadOrStore(t *testing.T) {
	t.Parallel()
	var limiters limiterMap

	first := rate.NewLimiter(rate.Inf, 1)
	got, loaded := limiters.LoadOrStore("guild1", first)
	assert.False(t, loaded)
	assert.Same(t, first, got)

	// Subsequent calls return the stored limiter, not the new candidate.
	second := rate.NewLimiter(rate.Inf, 1)
	got, loaded = limiters.LoadOrStore("guild1", second)
	assert.True(t, loaded)
	assert.Same(t, first, got)

	got, loaded = limiters.LoadOrStore("guild2", second)
	assert.False(t, loaded)
	assert.Same(t, second, got)
}

func TestGuildLimiterBurst(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	cfg := DefaultConfig()
	d := &Discord{
		config: cfg.Discord,
		v:      &Vantha{config: cfg, store: store},
	}
	d.logger = slog.Default()

	limiter := d.guildLimiter("guild1")
	require.NotNil(t, limiter)
	assert.Same(t, limiter, d.guildLimiter("guild1"))
	assert.NotSame(t, limiter, d.guildLimiter("guild2"))

	// The default burst fires immediately; the next attempt waits out the
	// cooldown.
	for n := 0; n < DefaultTriggerBurst; n++ {
		assert.True(t, limiter.Allow(), "burst allowance %d", n)
	}
	assert.False(t, limiter.Allow())
}
