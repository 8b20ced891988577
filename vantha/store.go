package vantha

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lmittmann/tint"
)

const (
	accountsFile = "accounts.json"
	ticketsFile  = "tickets.json"
	triggersFile = "triggers.json"
	guildsFile   = "guilds.json"
)

// Store is the bot's record store: accounts, support tickets, trigger
// rules and per-guild settings, held in memory and periodically written
// to flat JSON files (one per table) under the configured data directory.
//
// Every operation is a synchronous read-modify-write guarded by that
// table's mutex, so no two logical mutations of the same table ever
// interleave. The flush loop takes the same locks when serializing, so
// it never observes a table mid-mutation.
//
// Store never returns domain errors: insufficient funds, cooldowns and
// missing records are boolean/nil results. Malformed table files are
// recovered as empty tables at load time.
type Store struct {
	dataDir string
	logger  *slog.Logger

	economy  *EconomyConfig
	modmail  *ModmailConfig
	triggers *TriggerConfig

	accountsMu sync.Mutex
	accounts   map[string]*Account

	ticketsMu sync.Mutex
	tickets   map[string]*Ticket

	rulesMu sync.Mutex
	rules   map[string]map[string]*TriggerRule

	guildsMu sync.Mutex
	guilds   map[string]*GuildSettings

	dirty       atomic.Bool
	lastFlush   atomic.Int64
	flushMu     sync.Mutex
	flushPeriod time.Duration

	// now is replaceable in tests; everything time-dependent in the
	// store goes through it
	now func() time.Time
}

// NewStore loads each table from the data directory and returns a ready
// Store. A missing or corrupt file for one table does not affect the
// others; both cases start that table empty.
func NewStore(cfg *Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{
		dataDir:     cfg.DataDir,
		logger:      logger.With(loggerNameKey, "store"),
		economy:     cfg.Economy,
		modmail:     cfg.Modmail,
		triggers:    cfg.Triggers,
		flushPeriod: cfg.FlushInterval,
		now:         time.Now,
	}

	s.accounts = loadTable[*Account](s, accountsFile)
	s.tickets = loadTable[*Ticket](s, ticketsFile)
	s.rules = loadTable[map[string]*TriggerRule](s, triggersFile)
	s.guilds = loadTable[*GuildSettings](s, guildsFile)

	return s, nil
}

// loadTable reads one table file into a map. Read or decode failures are
// logged and recovered as an empty table; availability beats strictness
// for this data.
func loadTable[T any](s *Store, name string) map[string]T {
	table := map[string]T{}
	path := filepath.Join(s.dataDir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn(
				"could not read table file, starting empty",
				"file", name,
				tint.Err(err),
			)
		}
		return table
	}

	if err := json.Unmarshal(data, &table); err != nil {
		s.logger.Warn(
			"malformed table file, starting empty",
			"file", name,
			tint.Err(err),
		)
		return map[string]T{}
	}

	s.logger.Info("loaded table", "file", name, "records", len(table))
	return table
}

func (s *Store) markDirty() {
	s.dirty.Store(true)
}

// Dirty reports whether there are unflushed mutations.
func (s *Store) Dirty() bool {
	return s.dirty.Load()
}

// LastFlush returns when the last successful flush completed (zero time
// if never flushed).
func (s *Store) LastFlush() time.Time {
	v := s.lastFlush.Load()
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(v, 0)
}

// Flush serializes all four tables to their files. Concurrent calls
// serialize behind flushMu. Errors for individual tables are joined so
// one failing file doesn't stop the others from being written.
func (s *Store) Flush() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	// Clear first: mutations that land mid-flush re-mark the store
	// dirty and get picked up next interval.
	s.dirty.Store(false)

	var errs []error

	s.accountsMu.Lock()
	data, err := json.MarshalIndent(s.accounts, "", "  ")
	s.accountsMu.Unlock()
	errs = append(errs, s.writeTable(accountsFile, data, err))

	s.ticketsMu.Lock()
	data, err = json.MarshalIndent(s.tickets, "", "  ")
	s.ticketsMu.Unlock()
	errs = append(errs, s.writeTable(ticketsFile, data, err))

	s.rulesMu.Lock()
	data, err = json.MarshalIndent(s.rules, "", "  ")
	s.rulesMu.Unlock()
	errs = append(errs, s.writeTable(triggersFile, data, err))

	s.guildsMu.Lock()
	data, err = json.MarshalIndent(s.guilds, "", "  ")
	s.guildsMu.Unlock()
	errs = append(errs, s.writeTable(guildsFile, data, err))

	if err := errors.Join(errs...); err != nil {
		s.dirty.Store(true)
		return err
	}

	s.lastFlush.Store(s.now().Unix())
	return nil
}

// writeTable writes marshaled table data via a temp file and rename, so
// a crash mid-write never leaves a truncated table behind.
func (s *Store) writeTable(name string, data []byte, marshalErr error) error {
	if marshalErr != nil {
		return fmt.Errorf("marshaling %s: %w", name, marshalErr)
	}
	path := filepath.Join(s.dataDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

// TableSizes returns the record count of each table, for the status API.
func (s *Store) TableSizes() map[string]int {
	sizes := map[string]int{}

	s.accountsMu.Lock()
	sizes["accounts"] = len(s.accounts)
	s.accountsMu.Unlock()

	s.ticketsMu.Lock()
	sizes["tickets"] = len(s.tickets)
	s.ticketsMu.Unlock()

	s.rulesMu.Lock()
	var rules int
	for _, guildRules := range s.rules {
		rules += len(guildRules)
	}
	sizes["triggers"] = rules
	s.rulesMu.Unlock()

	s.guildsMu.Lock()
	sizes["guilds"] = len(s.guilds)
	s.guildsMu.Unlock()

	return sizes
}
