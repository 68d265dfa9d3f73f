package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/nikbrunner/netmark/internal/logger"
	"github.com/nikbrunner/netmark/internal/metrics"
)

const (
	// DefaultSweepInterval is how often expired trash is purged.
	DefaultSweepInterval = 5 * time.Second

	sweepTaskName = "trash-sweep"
)

// Cleaner purges expired trash and reports how many bookmarks it removed.
type Cleaner interface {
	CleanupTrash(ctx context.Context) (int, error)
}

// TrashSweeper periodically purges expired trash.
type TrashSweeper struct {
	cleaner  Cleaner
	sched    Scheduler
	logger   logger.Logger
	interval time.Duration
	metrics  *metrics.Recorder

	mu     sync.Mutex
	handle Handle
}

// NewTrashSweeper creates a new trash sweeper. A zero interval uses
// DefaultSweepInterval.
func NewTrashSweeper(
	cleaner Cleaner,
	sched Scheduler,
	log logger.Logger,
	interval time.Duration,
	rec *metrics.Recorder,
) *TrashSweeper {
	if interval == 0 {
		interval = DefaultSweepInterval
	}
	if log == nil {
		log = logger.Nop()
	}

	return &TrashSweeper{
		cleaner:  cleaner,
		sched:    sched,
		logger:   log,
		interval: interval,
		metrics:  rec,
	}
}

// Start sweeps once and then registers the recurring sweep. The
// scheduler itself must be started by the caller.
func (ts *TrashSweeper) Start(ctx context.Context) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.handle != nil {
		return nil
	}

	// Run immediately on start
	if _, err := ts.Sweep(ctx); err != nil {
		ts.logger.Warn("initial trash sweep failed", logger.Error(err))
	}

	handle, err := ts.sched.Every(sweepTaskName, ts.interval, func(ctx context.Context) {
		// Failures are logged inside Sweep; the schedule keeps going.
		_, _ = ts.Sweep(ctx)
	})
	if err != nil {
		return err
	}
	ts.handle = handle
	return nil
}

// Stop cancels the recurring sweep.
func (ts *TrashSweeper) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.handle != nil {
		ts.handle.Cancel()
		ts.handle = nil
	}
}

// Sweep runs one cleanup pass.
func (ts *TrashSweeper) Sweep(ctx context.Context) (int, error) {
	removed, err := ts.cleaner.CleanupTrash(ctx)
	ts.metrics.ObserveSweep(removed, err)
	if err != nil {
		ts.logger.Error("trash sweep failed", logger.Error(err))
		return 0, err
	}

	if removed > 0 {
		ts.logger.Info("trash sweep completed", logger.Int("removed", removed))
	} else {
		ts.logger.Debug("no expired trash to sweep")
	}
	return removed, nil
}
