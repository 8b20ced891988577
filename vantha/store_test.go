package vantha

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DefaultTestConfig returns a default config pointed at a per-test data
// directory.
func DefaultTestConfig(t testing.TB) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return cfg
}

func newTestStore(t testing.TB) *Store {
	t.Helper()
	cfg := DefaultTestConfig(t)
	store, err := NewStore(cfg, slog.Default())
	require.NoError(t, err)
	return store
}

func TestStoreFlushRoundTrip(t *testing.T) {
	t.Parallel()
	cfg := DefaultTestConfig(t)
	store, err := NewStore(cfg, slog.Default())
	require.NoError(t, err)

	userID := t.Name()
	require.True(t, store.Credit(userID, 500))
	store.AddToInventory(
		userID, "vip", InventoryItem{
			Name:  "VIP",
			Type:  ItemTypeRole,
			Price: 15000,
			Color: 0xffd700,
		},
	)
	store.ActivatePerk(userID, "daily_boost", time.Now().Add(7*24*time.Hour))
	store.AddWarning(userID, "guild1", "spamming", "mod1")

	ticketID, created := store.CreateTicket(userID, "guild1", "chan1")
	require.True(t, created)
	require.True(t, store.AppendTicketMessage(ticketID, userID, "hello staff"))

	require.True(t, store.AddTriggerRule("guild1", "Hello", "Hi there!"))
	store.MergeGuildConfig(
		"guild1",
		GuildSettingsPatch{Prefix: stringPtr("!")},
	)

	require.True(t, store.Dirty())
	require.NoError(t, store.Flush())
	assert.False(t, store.Dirty())
	assert.False(t, store.LastFlush().IsZero())

	for _, name := range []string{accountsFile, ticketsFile, triggersFile, guildsFile} {
		_, statErr := os.Stat(filepath.Join(cfg.DataDir, name))
		assert.NoError(t, statErr, name)
	}

	// A fresh store over the same directory sees identical records.
	reloaded, err := NewStore(cfg, slog.Default())
	require.NoError(t, err)

	acct := reloaded.Account(userID)
	assert.Equal(t, int64(1000+500), acct.Balance)
	require.Contains(t, acct.Inventory, "vip")
	assert.Equal(t, 0xffd700, acct.Inventory["vip"].Color)
	assert.True(t, reloaded.PerkActive(userID, "daily_boost"))
	assert.Len(t, reloaded.UserWarnings(userID, "guild1"), 1)

	ticket := reloaded.Ticket(ticketID)
	require.NotNil(t, ticket)
	assert.Equal(t, TicketStatusOpen, ticket.Status)
	require.Len(t, ticket.Messages, 1)
	assert.Equal(t, "hello staff", ticket.Messages[0].Content)

	_, response, ok := reloaded.MatchTrigger("guild1", "well HELLO friend")
	require.True(t, ok)
	assert.Equal(t, "Hi there!", response)

	assert.Equal(t, "!", reloaded.GuildConfig("guild1").Prefix)
}

func TestStoreMalformedTableRecovered(t *testing.T) {
	t.Parallel()
	cfg := DefaultTestConfig(t)

	require.NoError(
		t, os.WriteFile(
			filepath.Join(cfg.DataDir, accountsFile),
			[]byte("{not json"),
			0o644,
		),
	)

	store, err := NewStore(cfg, slog.Default())
	require.NoError(t, err)

	// The corrupt table starts empty rather than failing the load.
	assert.Equal(t, 0, store.TableSizes()["accounts"])
	acct := store.Account("someone")
	assert.Equal(t, DefaultStartingBalance, int(acct.Balance))
}

func TestStoreMissingFilesStartEmpty(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	sizes := store.TableSizes()
	for _, table := range []string{"accounts", "tickets", "triggers", "guilds"} {
		assert.Equal(t, 0, sizes[table], table)
	}
	assert.False(t, store.Dirty())
}

func TestStoreDirtyFlag(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	assert.False(t, store.Dirty())
	store.Credit(t.Name(), 100)
	assert.True(t, store.Dirty())

	require.NoError(t, store.Flush())
	assert.False(t, store.Dirty())

	// Reads don't re-dirty the store.
	_ = store.Account(t.Name())
	_ = store.Leaderboard()
	assert.False(t, store.Dirty())

	store.Credit(t.Name(), 1)
	assert.True(t, store.Dirty())
}

func TestStoreFlushAtomicReplace(t *testing.T) {
	t.Parallel()
	cfg := DefaultTestConfig(t)
	store, err := NewStore(cfg, slog.Default())
	require.NoError(t, err)

	store.Credit(t.Name(), 100)
	require.NoError(t, store.Flush())
	store.Credit(t.Name(), 100)
	require.NoError(t, store.Flush())

	// No temp files left behind after a successful flush.
	matches, err := filepath.Glob(filepath.Join(cfg.DataDir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func stringPtr(s string) *string {
	return &s
}
