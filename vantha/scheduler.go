package vantha

import (
	"context"
	"time"

	"github.com/lmittmann/tint"
)

// runFlushLoop writes the tables to disk every flush interval, for as
// long as the context lives. Flush failures are logged and retried on
// the next tick; in-memory state stays authoritative throughout. A final
// flush runs on shutdown so a clean exit loses nothing.
func (s *Store) runFlushLoop(ctx context.Context) {
	interval := s.flushPeriod
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	log := s.logger.With(loggerNameKey, "flush_loop")
	log.Info("starting flush loop", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.Flush(); err != nil {
				log.Error("final flush failed", tint.Err(err))
			} else {
				log.Info("final flush complete")
			}
			return
		case <-ticker.C:
			if !s.Dirty() {
				continue
			}
			started := time.Now()
			if err := s.Flush(); err != nil {
				log.Error("flush failed, will retry next interval", tint.Err(err))
				continue
			}
			log.Debug("flushed tables", "elapsed", time.Since(started))
		}
	}
}
