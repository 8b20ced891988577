package vantha

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"
)

// Build metadata, set via ldflags.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildTime = "unknown"
)

// Vantha is the top-level bot: it owns the configuration, the record
// store, the Discord connection, the persistence scheduler and the
// optional status API, and wires them together for a run.
type Vantha struct {
	config     *Config
	logger     *slog.Logger
	logHandler slog.Handler

	store   *Store
	discord *Discord
	api     *API

	startedAt time.Time

	// runMu prevents concurrent Run calls
	runMu sync.Mutex
}

// New creates a Vantha instance from the given config, loading the
// record store's tables from disk.
func New(config *Config) (*Vantha, error) {
	if config == nil {
		config = DefaultConfig()
	}

	v := &Vantha{config: config}

	v.logHandler = newLogHandler(config.LogLevel)
	v.logger = slog.New(v.logHandler)
	slog.SetDefault(v.logger)

	store, err := NewStore(config, slog.New(newLogHandler(config.StoreLogLevel)))
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	v.store = store

	discord, err := newDiscord(v, config.Discord)
	if err != nil {
		return nil, err
	}
	v.discord = discord

	if config.API != nil && config.API.Enabled {
		v.api = newAPI(v, config.API)
	}

	return v, nil
}

// Store exposes the record store, primarily for tests and the status
// API.
func (v *Vantha) Store() *Store {
	return v.store
}

// Run connects to Discord and runs the bot until the context is
// canceled, then shuts down gracefully: the gateway closes first, the
// store takes a final flush on the way out.
func (v *Vantha) Run(ctx context.Context) error {
	v.runMu.Lock()
	defer v.runMu.Unlock()

	v.startedAt = time.Now()
	logger := v.logger
	ctx = WithLogger(ctx, logger)

	logger.LogAttrs(ctx, slog.LevelInfo, "starting", slog.Any("config", *v.config))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := v.discord.open(ctx); err != nil {
		return fmt.Errorf("connecting to discord: %w", err)
	}

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(
		func() error {
			v.store.runFlushLoop(groupCtx)
			return nil
		},
	)

	g.Go(
		func() error {
			v.discord.runTicketSweep(groupCtx)
			return nil
		},
	)

	if v.api != nil {
		g.Go(
			func() error {
				err := v.api.Serve(groupCtx)
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.ErrorContext(groupCtx, "error serving status API", tint.Err(err))
					return err
				}
				return nil
			},
		)
	}

	<-groupCtx.Done()
	logger.Info("shutting down")

	if err := v.discord.close(); err != nil {
		logger.Error("error closing discord session", tint.Err(err))
	}

	waitErr := g.Wait()
	if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		return waitErr
	}
	return nil
}
