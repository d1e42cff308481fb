// Package job holds the background loops that run beside the HTTP server.
package job

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	cacheport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/cache"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/usecase"
)

// SweeperLockKey is the lease every replica competes for before sweeping
const SweeperLockKey = "pending-sweeper"

// SweeperConfig holds sweeper settings
type SweeperConfig struct {
	Interval time.Duration
	LockTTL  time.Duration
}

// PendingSweeper polls the provider for gateway transactions stuck in pending
type PendingSweeper struct {
	reconciler   usecase.ReconciliationUseCase
	locker       cacheport.Locker
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	cfg          SweeperConfig
	stopCh       chan struct{}
	stopOnce     sync.Once

	// last id handed to Poll; the next sweep resumes above it
	cursor atomic.Uint64
}

// NewPendingSweeper creates a sweeper
func NewPendingSweeper(
	reconciler usecase.ReconciliationUseCase,
	locker cacheport.Locker,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg SweeperConfig,
) *PendingSweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = cfg.Interval
	}
	return &PendingSweeper{
		reconciler:   reconciler,
		locker:       locker,
		timeProvider: timeProvider,
		logger:       logger,
		cfg:          cfg,
		stopCh:       make(chan struct{}),
	}
}

// Start runs a sweep on every tick until ctx is done or Stop is called
func (s *PendingSweeper) Start(ctx context.Context) {
	s.logger.Info("Pending sweeper started", map[string]any{
		"interval": s.cfg.Interval.String(),
	})

	ticker := s.timeProvider.NewTicker(coreport.Duration(s.cfg.Interval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Pending sweeper stopping", map[string]any{"reason": ctx.Err().Error()})
			return
		case <-s.stopCh:
			s.logger.Info("Pending sweeper stopped", nil)
			return
		case <-ticker.C():
			s.Sweep(ctx)
		}
	}
}

// Stop ends the loop started by Start
func (s *PendingSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Sweep runs one cycle under the shared lease and returns how many
// transactions left the pending state
func (s *PendingSweeper) Sweep(ctx context.Context) int {
	token, ok, err := s.locker.Acquire(ctx, SweeperLockKey, s.cfg.LockTTL)
	if err != nil {
		s.logger.Warn("Pending sweeper could not take its lease", map[string]any{"error": err.Error()})
		return 0
	}
	if !ok {
		s.logger.Debug("Pending sweep skipped, another replica holds the lease", nil)
		return 0
	}
	defer func() {
		// a cancelled sweep still frees its lease
		if err := s.locker.Release(context.WithoutCancel(ctx), SweeperLockKey, token); err != nil {
			s.logger.Warn("Pending sweeper could not release its lease", map[string]any{"error": err.Error()})
		}
	}()

	ids, err := s.nextBatch(ctx)
	if err != nil {
		s.logger.Error("Failed to list pending gateway transactions", map[string]any{"error": err.Error()})
		return 0
	}
	if len(ids) == 0 {
		return 0
	}

	start := s.timeProvider.Now()
	resolved := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		s.cursor.Store(id)
		outcome, err := s.reconciler.Poll(ctx, id)
		if err != nil {
			s.logger.Error("Pending transaction poll failed", map[string]any{
				"transaction_id": id,
				"error":          err.Error(),
			})
			continue
		}
		if outcome.Changed {
			resolved++
		}
	}

	s.logger.Info("Pending sweep finished", map[string]any{
		"candidates":  len(ids),
		"resolved":    resolved,
		"cursor":      s.cursor.Load(),
		"duration_ms": s.timeProvider.Since(start).Std().Milliseconds(),
	})
	return resolved
}

// nextBatch pages through stale transactions by id. Once the pages run out
// it wraps to the start so rows that stay pending are polled again.
func (s *PendingSweeper) nextBatch(ctx context.Context) ([]uint64, error) {
	after := s.cursor.Load()
	ids, err := s.reconciler.StalePending(ctx, after)
	if err != nil || len(ids) > 0 || after == 0 {
		return ids, err
	}
	s.cursor.Store(0)
	return s.reconciler.StalePending(ctx, 0)
}
