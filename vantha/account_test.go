package vantha

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountLazyCreation(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	acct := store.Account(t.Name())
	assert.Equal(t, int64(DefaultStartingBalance), acct.Balance)
	assert.Zero(t, acct.TotalEarned)
	assert.Zero(t, acct.TotalSpent)
	assert.NotZero(t, acct.CreatedAt)
	assert.NotNil(t, acct.Inventory)
	assert.NotNil(t, acct.ActivePerks)

	// Second read returns the same record, not a fresh one.
	store.Credit(t.Name(), 50)
	assert.Equal(t, int64(DefaultStartingBalance+50), store.Account(t.Name()).Balance)
}

func TestDebitAllOrNothing(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	before := store.Account(userID)

	// Overdraft attempt leaves everything untouched.
	assert.False(t, store.Debit(userID, before.Balance+1))
	after := store.Account(userID)
	assert.Equal(t, before.Balance, after.Balance)
	assert.Equal(t, before.TotalSpent, after.TotalSpent)

	// Exact-balance debit drains to zero.
	assert.True(t, store.Debit(userID, before.Balance))
	after = store.Account(userID)
	assert.Zero(t, after.Balance)
	assert.Equal(t, before.Balance, after.TotalSpent)

	// Nothing left to take.
	assert.False(t, store.Debit(userID, 1))
	assert.Zero(t, store.Account(userID).Balance)
}

func TestCreditDebitRejectNonPositive(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	assert.False(t, store.Credit(userID, 0))
	assert.False(t, store.Credit(userID, -100))
	assert.False(t, store.Debit(userID, 0))
	assert.False(t, store.Debit(userID, -100))

	acct := store.Account(userID)
	assert.Equal(t, int64(DefaultStartingBalance), acct.Balance)
	assert.Zero(t, acct.TotalEarned)
	assert.Zero(t, acct.TotalSpent)
}

func TestCreditUpdatesTotals(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	require.True(t, store.Credit(userID, 300))
	require.True(t, store.Credit(userID, 200))
	require.True(t, store.Debit(userID, 400))

	acct := store.Account(userID)
	assert.Equal(t, int64(DefaultStartingBalance+100), acct.Balance)
	assert.Equal(t, int64(500), acct.TotalEarned)
	assert.Equal(t, int64(400), acct.TotalSpent)
}

func TestClaimDailyCooldown(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	current := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return current }

	require.True(t, store.ClaimDaily(userID))
	assert.Equal(
		t,
		int64(DefaultStartingBalance+DefaultDailyAmount),
		store.Account(userID).Balance,
	)

	// Immediately again: rejected, no credit.
	assert.False(t, store.ClaimDaily(userID))
	assert.Equal(
		t,
		int64(DefaultStartingBalance+DefaultDailyAmount),
		store.Account(userID).Balance,
	)
	assert.Equal(t, DefaultDailyCooldown, store.NextDaily(userID))

	// One second before the window closes: still rejected.
	current = current.Add(DefaultDailyCooldown - time.Second)
	assert.False(t, store.ClaimDaily(userID))
	assert.Equal(t, time.Second, store.NextDaily(userID))

	// At the boundary the claim succeeds again.
	current = current.Add(time.Second)
	assert.Zero(t, store.NextDaily(userID))
	assert.True(t, store.ClaimDaily(userID))
	assert.Equal(
		t,
		int64(DefaultStartingBalance+2*DefaultDailyAmount),
		store.Account(userID).Balance,
	)
}

func TestClaimWorkCooldown(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	current := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return current }

	require.True(t, store.ClaimWork(userID, 150))
	assert.False(t, store.ClaimWork(userID, 150))
	assert.Equal(t, DefaultWorkCooldown, store.NextWork(userID))

	current = current.Add(DefaultWorkCooldown)
	assert.True(t, store.ClaimWork(userID, 75))
	assert.Equal(
		t,
		int64(DefaultStartingBalance+150+75),
		store.Account(userID).Balance,
	)
}

func TestPerkExpiryBoundary(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	current := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return current }

	expiresAt := current.Add(3 * 24 * time.Hour)
	store.ActivatePerk(userID, perkGambleLuck, expiresAt)

	assert.True(t, store.PerkActive(userID, perkGambleLuck))
	assert.Contains(t, store.UserActivePerks(userID), perkGambleLuck)

	// One second before expiry: still active.
	current = expiresAt.Add(-time.Second)
	assert.True(t, store.PerkActive(userID, perkGambleLuck))

	// At the exact expiry instant the perk is no longer active.
	current = expiresAt
	assert.False(t, store.PerkActive(userID, perkGambleLuck))
	assert.Empty(t, store.UserActivePerks(userID))

	// The expired entry stays on the record rather than being swept.
	acct := store.Account(userID)
	assert.Contains(t, acct.ActivePerks, perkGambleLuck)
}

func TestActivatePerkStampsInventoryExpiry(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	store.AddToInventory(
		userID, perkDailyBoost, InventoryItem{
			Name:         "Daily Boost",
			Type:         ItemTypePerk,
			Price:        10000,
			DurationDays: 7,
		},
	)
	expiresAt := time.Now().Add(7 * 24 * time.Hour)
	store.ActivatePerk(userID, perkDailyBoost, expiresAt)

	acct := store.Account(userID)
	require.Contains(t, acct.Inventory, perkDailyBoost)
	assert.Equal(t, expiresAt.Unix(), acct.Inventory[perkDailyBoost].Expiry)
}

func TestAddWarningCountsPerGuild(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	assert.Equal(t, 1, store.AddWarning(userID, "guild1", "spam", "mod1"))
	assert.Equal(t, 2, store.AddWarning(userID, "guild1", "flood", "mod1"))

	// Warnings in another guild don't inflate the first guild's count.
	assert.Equal(t, 1, store.AddWarning(userID, "guild2", "links", "mod2"))
	assert.Equal(t, 3, store.AddWarning(userID, "guild1", "caps", "mod1"))

	assert.Len(t, store.UserWarnings(userID, "guild1"), 3)
	assert.Len(t, store.UserWarnings(userID, "guild2"), 1)
	assert.Len(t, store.UserWarnings(userID, ""), 4)
}

func TestRemoveFromInventory(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	assert.False(t, store.RemoveFromInventory(userID, "nonexistent"))

	store.AddToInventory(
		userID, "trophy", InventoryItem{Name: "Trophy", Type: ItemTypeItem, Price: 25000},
	)
	assert.True(t, store.RemoveFromInventory(userID, "trophy"))
	assert.False(t, store.RemoveFromInventory(userID, "trophy"))
	assert.NotContains(t, store.Account(userID).Inventory, "trophy")
}

func TestSetBalance(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	require.True(t, store.Credit(userID, 300))

	assert.True(t, store.SetBalance(userID, 42))
	acct := store.Account(userID)
	assert.Equal(t, int64(42), acct.Balance)
	// An admin adjustment is neither earning nor spending.
	assert.Equal(t, int64(300), acct.TotalEarned)
	assert.Zero(t, acct.TotalSpent)

	assert.True(t, store.SetBalance(userID, 0))
	assert.Zero(t, store.Account(userID).Balance)

	assert.False(t, store.SetBalance(userID, -1))
	assert.Zero(t, store.Account(userID).Balance)
}

func TestDrainBalance(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	drained := store.DrainBalance(userID)
	assert.Equal(t, int64(DefaultStartingBalance), drained)

	acct := store.Account(userID)
	assert.Zero(t, acct.Balance)
	assert.Equal(t, drained, acct.TotalSpent)

	// Draining an empty account takes nothing.
	assert.Zero(t, store.DrainBalance(userID))
	assert.Equal(t, drained, store.Account(userID).TotalSpent)
}

func TestResetAccount(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	assert.False(t, store.ResetAccount(userID))

	store.Credit(userID, 5000)
	assert.True(t, store.ResetAccount(userID))

	// Recreated fresh on next access.
	assert.Equal(t, int64(DefaultStartingBalance), store.Account(userID).Balance)
}

func TestLeaderboardOrdering(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	users := []struct {
		id     string
		credit int64
	}{
		{"user-b", 500},
		{"user-a", 500},
		{"user-c", 9000},
		{"user-d", 1},
	}
	for _, u := range users {
		require.True(t, store.Credit(u.id, u.credit))
	}

	entries := store.Leaderboard()
	require.Len(t, entries, 4)
	assert.Equal(t, "user-c", entries[0].UserID)
	// Equal balances order by user ID for stable pagination.
	assert.Equal(t, "user-a", entries[1].UserID)
	assert.Equal(t, "user-b", entries[2].UserID)
	assert.Equal(t, "user-d", entries[3].UserID)
}

func TestAccountCloneIsolation(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	store.AddToInventory(
		userID, "pet", InventoryItem{Name: "Pet Rock", Type: ItemTypeItem, Price: 1000},
	)
	acct := store.Account(userID)
	acct.Balance = -999
	acct.Inventory["pet"].Name = "mutated"
	acct.Warnings = append(acct.Warnings, Warning{Reason: "injected"})

	fresh := store.Account(userID)
	assert.Equal(t, int64(DefaultStartingBalance), fresh.Balance)
	assert.Equal(t, "Pet Rock", fresh.Inventory["pet"].Name)
	assert.Empty(t, fresh.Warnings)
}

func TestConcurrentCreditsSum(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	userID := t.Name()

	const workers = 10
	const perWorker = 50
	done := make(chan struct{}, workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for n := 0; n < perWorker; n++ {
				store.Credit(userID, 2)
			}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}

	acct := store.Account(userID)
	assert.Equal(
		t,
		int64(DefaultStartingBalance+workers*perWorker*2),
		acct.Balance,
		fmt.Sprintf("expected all %d credits applied", workers*perWorker),
	)
}
