package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/schakibb/Manehej-back/src/logging"
)

// SessionPurger deletes expired sessions
type SessionPurger interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// CleanupService periodically removes expired refresh sessions
type CleanupService struct {
	purger   SessionPurger
	interval time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	log      zerolog.Logger
}

// NewCleanupService creates a new cleanup service; interval <= 0 disables it
func NewCleanupService(purger SessionPurger, interval time.Duration) *CleanupService {
	return &CleanupService{
		purger:   purger,
		interval: interval,
		done:     make(chan struct{}),
		log:      logging.NewLogger("cleanup"),
	}
}

// Enabled reports whether Start will run a sweep loop
func (cs *CleanupService) Enabled() bool {
	return cs.interval > 0
}

// Start starts the cleanup loop
func (cs *CleanupService) Start(ctx context.Context) {
	if !cs.Enabled() {
		cs.log.Info().Msg("session cleanup is disabled")
		return
	}

	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()
		ticker := time.NewTicker(cs.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				cs.log.Info().Msg("session cleanup stopped")
				return
			case <-cs.done:
				cs.log.Info().Msg("session cleanup stopped")
				return
			case <-ticker.C:
				cs.cleanup(ctx)
			}
		}
	}()

	cs.log.Info().Dur("interval", cs.interval).Msg("session cleanup started")
}

// Stop stops the loop and waits for it to exit. Safe to call more than once.
func (cs *CleanupService) Stop() {
	cs.stopOnce.Do(func() { close(cs.done) })
	cs.wg.Wait()
}

func (cs *CleanupService) cleanup(ctx context.Context) {
	if _, err := cs.purger.CleanupExpiredSessions(ctx); err != nil {
		cs.log.Error().Err(err).Msg("session cleanup failed")
	}
}
