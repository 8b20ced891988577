package vantha

import (
	"sort"
	"time"
)

// Item types recognized in account inventories.
const (
	ItemTypeRole = "role"
	ItemTypeItem = "item"
	ItemTypePerk = "perk"
)

// Account is a user's persisted economic and moderation record. Accounts
// are global (keyed by Discord user ID, not per-guild) and created
// lazily on first access.
type Account struct {
	// Balance never goes negative; debits are all-or-nothing
	Balance int64 `json:"balance"`

	// TotalEarned and TotalSpent only ever increase
	TotalEarned int64 `json:"total_earned"`
	TotalSpent  int64 `json:"total_spent"`

	// LastDaily and LastWork gate reward cooldowns, Unix seconds
	LastDaily int64 `json:"last_daily"`
	LastWork  int64 `json:"last_work"`

	// Warnings is append-only
	Warnings []Warning `json:"warnings"`

	// Inventory is keyed by item ID; buying an owned item overwrites it
	Inventory map[string]*InventoryItem `json:"inventory"`

	// ActivePerks is keyed by perk ID. Entries are never swept; a perk
	// counts as active only while now < expires_at.
	ActivePerks map[string]*ActivePerk `json:"active_perks"`

	CreatedAt int64 `json:"created_at"`
}

// Warning is one moderation warning. Warnings are guild-tagged but live
// on the global account.
type Warning struct {
	Reason      string `json:"reason"`
	ModeratorID string `json:"moderator_id"`
	GuildID     string `json:"guild_id"`
	Timestamp   int64  `json:"timestamp"`
}

// InventoryItem is a purchased shop entry. Duration, Description, Color
// and Expiry are type-specific and omitted when unused.
type InventoryItem struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Price       int64  `json:"price"`
	PurchasedAt int64  `json:"purchased_at"`

	// DurationDays applies to perks
	DurationDays int `json:"duration,omitempty"`

	// Description applies to collectible items
	Description string `json:"description,omitempty"`

	// Color applies to roles
	Color int `json:"color,omitempty"`

	// Expiry is stamped when a perk is activated, Unix seconds
	Expiry int64 `json:"expiry,omitempty"`
}

// ActivePerk records a perk activation window, Unix seconds.
type ActivePerk struct {
	ActivatedAt int64 `json:"activated_at"`
	ExpiresAt   int64 `json:"expires_at"`
}

// LeaderboardEntry pairs a user with their balance for ranking.
type LeaderboardEntry struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

func (a *Account) clone() *Account {
	c := *a
	c.Warnings = append([]Warning(nil), a.Warnings...)
	c.Inventory = make(map[string]*InventoryItem, len(a.Inventory))
	for id, item := range a.Inventory {
		itemCopy := *item
		c.Inventory[id] = &itemCopy
	}
	c.ActivePerks = make(map[string]*ActivePerk, len(a.ActivePerks))
	for id, perk := range a.ActivePerks {
		perkCopy := *perk
		c.ActivePerks[id] = &perkCopy
	}
	return &c
}

// account returns the live record, creating it with defaults if absent.
// Callers must hold accountsMu.
func (s *Store) account(userID string) *Account {
	acct, ok := s.accounts[userID]
	if !ok {
		acct = &Account{
			Balance:     s.economy.StartingBalance,
			Inventory:   map[string]*InventoryItem{},
			ActivePerks: map[string]*ActivePerk{},
			CreatedAt:   s.now().Unix(),
		}
		s.accounts[userID] = acct
		s.markDirty()
	}
	return acct
}

// Account returns a copy of the user's record, creating it if needed.
// The copy is safe to read without holding any lock; mutations only
// happen through Store operations.
func (s *Store) Account(userID string) *Account {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	return s.account(userID).clone()
}

// ResetAccount removes the user's record entirely. Returns false if no
// record existed.
func (s *Store) ResetAccount(userID string) bool {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	if _, ok := s.accounts[userID]; !ok {
		return false
	}
	delete(s.accounts, userID)
	s.markDirty()
	return true
}

// Credit adds amount to the user's balance and total earned. Returns
// false without mutation for non-positive amounts.
func (s *Store) Credit(userID string, amount int64) bool {
	if amount <= 0 {
		return false
	}
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)
	acct.Balance += amount
	acct.TotalEarned += amount
	s.markDirty()
	return true
}

// Debit removes amount from the user's balance if sufficient funds
// exist, incrementing total spent. All-or-nothing: on insufficient
// funds (or a non-positive amount) nothing changes and false is
// returned.
func (s *Store) Debit(userID string, amount int64) bool {
	if amount <= 0 {
		return false
	}
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)
	if acct.Balance < amount {
		return false
	}
	acct.Balance -= amount
	acct.TotalSpent += amount
	s.markDirty()
	return true
}

// SetBalance sets the user's balance to an exact amount, for admin
// adjustments. Negative amounts are rejected; earned/spent totals are
// untouched since nothing was earned or spent.
func (s *Store) SetBalance(userID string, amount int64) bool {
	if amount < 0 {
		return false
	}
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)
	acct.Balance = amount
	s.markDirty()
	return true
}

// DrainBalance zeroes the user's balance, returning what was removed.
// Total spent increases by the drained amount.
func (s *Store) DrainBalance(userID string) int64 {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)
	drained := acct.Balance
	if drained > 0 {
		acct.Balance = 0
		acct.TotalSpent += drained
		s.markDirty()
	}
	return drained
}

// ClaimDaily credits the configured daily amount at most once per
// cooldown window. Returns false without mutation while on cooldown.
func (s *Store) ClaimDaily(userID string) bool {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)
	now := s.now().Unix()
	if now-acct.LastDaily < int64(s.economy.DailyCooldown.Seconds()) {
		return false
	}
	acct.LastDaily = now
	acct.Balance += s.economy.DailyAmount
	acct.TotalEarned += s.economy.DailyAmount
	s.markDirty()
	return true
}

// ClaimWork credits a caller-supplied amount (the command randomizes it)
// at most once per work cooldown window.
func (s *Store) ClaimWork(userID string, amount int64) bool {
	if amount <= 0 {
		return false
	}
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)
	now := s.now().Unix()
	if now-acct.LastWork < int64(s.economy.WorkCooldown.Seconds()) {
		return false
	}
	acct.LastWork = now
	acct.Balance += amount
	acct.TotalEarned += amount
	s.markDirty()
	return true
}

// NextDaily returns how long until the user can claim a daily reward,
// zero if available now.
func (s *Store) NextDaily(userID string) time.Duration {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)
	return s.cooldownRemaining(acct.LastDaily, s.economy.DailyCooldown)
}

// NextWork returns how long until the user can work again, zero if
// available now.
func (s *Store) NextWork(userID string) time.Duration {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)
	return s.cooldownRemaining(acct.LastWork, s.economy.WorkCooldown)
}

func (s *Store) cooldownRemaining(last int64, window time.Duration) time.Duration {
	elapsed := s.now().Unix() - last
	remaining := int64(window.Seconds()) - elapsed
	if remaining <= 0 {
		return 0
	}
	return time.Duration(remaining) * time.Second
}

// AddWarning appends a warning to the user's record and returns the new
// warning count for that guild. Warnings themselves are stored on the
// global account, but the returned count is guild-scoped since the
// escalation thresholds that consume it are per-guild.
func (s *Store) AddWarning(userID, guildID, reason, moderatorID string) int {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)
	acct.Warnings = append(
		acct.Warnings, Warning{
			Reason:      reason,
			ModeratorID: moderatorID,
			GuildID:     guildID,
			Timestamp:   s.now().Unix(),
		},
	)
	s.markDirty()

	var count int
	for _, w := range acct.Warnings {
		if w.GuildID == guildID {
			count++
		}
	}
	return count
}

// UserWarnings returns the user's warnings, optionally filtered to one
// guild (pass "" for all).
func (s *Store) UserWarnings(userID, guildID string) []Warning {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)

	warnings := make([]Warning, 0, len(acct.Warnings))
	for _, w := range acct.Warnings {
		if guildID == "" || w.GuildID == guildID {
			warnings = append(warnings, w)
		}
	}
	return warnings
}

// AddToInventory sets the item under itemID, overwriting any previous
// entry with the same ID.
func (s *Store) AddToInventory(userID, itemID string, item InventoryItem) {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)
	if item.PurchasedAt == 0 {
		item.PurchasedAt = s.now().Unix()
	}
	acct.Inventory[itemID] = &item
	s.markDirty()
}

// RemoveFromInventory deletes itemID from the user's inventory. Removing
// an absent item is a no-op returning false.
func (s *Store) RemoveFromInventory(userID, itemID string) bool {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)
	if _, ok := acct.Inventory[itemID]; !ok {
		return false
	}
	delete(acct.Inventory, itemID)
	s.markDirty()
	return true
}

// ActivatePerk inserts or overwrites the active-perk entry and stamps
// the expiry onto the matching inventory item if present.
func (s *Store) ActivatePerk(userID, perkID string, expiresAt time.Time) {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)
	expiry := expiresAt.Unix()
	acct.ActivePerks[perkID] = &ActivePerk{
		ActivatedAt: s.now().Unix(),
		ExpiresAt:   expiry,
	}
	if item, ok := acct.Inventory[perkID]; ok {
		item.Expiry = expiry
	}
	s.markDirty()
}

// PerkActive reports whether the perk is active: an entry exists and
// the current time is strictly before its expiry. Expired entries are
// left in place.
func (s *Store) PerkActive(userID, perkID string) bool {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)
	perk, ok := acct.ActivePerks[perkID]
	if !ok {
		return false
	}
	return s.now().Unix() < perk.ExpiresAt
}

// UserActivePerks returns the subset of the user's perk entries that are
// still active.
func (s *Store) UserActivePerks(userID string) map[string]ActivePerk {
	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()
	acct := s.account(userID)

	now := s.now().Unix()
	active := map[string]ActivePerk{}
	for id, perk := range acct.ActivePerks {
		if now < perk.ExpiresAt {
			active[id] = *perk
		}
	}
	return active
}

// Leaderboard returns all accounts ordered by balance, highest first.
// Ties break on user ID so pagination stays stable.
func (s *Store) Leaderboard() []LeaderboardEntry {
	s.accountsMu.Lock()
	entries := make([]LeaderboardEntry, 0, len(s.accounts))
	for id, acct := range s.accounts {
		entries = append(entries, LeaderboardEntry{UserID: id, Balance: acct.Balance})
	}
	s.accountsMu.Unlock()

	sort.Slice(
		entries, func(i, j int) bool {
			if entries[i].Balance != entries[j].Balance {
				return entries[i].Balance > entries[j].Balance
			}
			return entries[i].UserID < entries[j].UserID
		},
	)
	return entries
}
