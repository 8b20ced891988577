package vantha

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlushLoopPeriodicWrite(t *testing.T) {
	t.Parallel()
	cfg := DefaultTestConfig(t)
	cfg.FlushInterval = 20 * time.Millisecond
	store, err := NewStore(cfg, slog.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.runFlushLoop(ctx)
		close(done)
	}()

	store.Credit(t.Name(), 250)

	require.Eventually(
		t, func() bool {
			return !store.Dirty()
		}, time.Second, 5*time.Millisecond,
		"flush loop should pick up the mutation",
	)

	_, statErr := os.Stat(filepath.Join(cfg.DataDir, accountsFile))
	assert.NoError(t, statErr)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("flush loop did not stop after cancel")
	}
}

func TestFlushLoopFinalFlushOnShutdown(t *testing.T) {
	t.Parallel()
	cfg := DefaultTestConfig(t)
	// Long interval: the only flush that can happen is the shutdown one.
	cfg.FlushInterval = time.Hour
	store, err := NewStore(cfg, slog.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.runFlushLoop(ctx)
		close(done)
	}()

	store.Credit(t.Name(), 77)
	require.True(t, store.Dirty())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("flush loop did not stop after cancel")
	}

	assert.False(t, store.Dirty())

	reloaded, err := NewStore(cfg, slog.Default())
	require.NoError(t, err)
	assert.Equal(
		t,
		int64(DefaultStartingBalance+77),
		reloaded.Account(t.Name()).Balance,
	)
}
