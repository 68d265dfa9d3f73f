// Package scheduler runs recurring background tasks such as the trash
// sweep. CronScheduler uses wall-clock time; ManualScheduler advances a
// virtual clock so tests control exactly when tasks fire.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is one run of a recurring job. ctx is cancelled when the
// scheduler stops.
type Task func(ctx context.Context)

// Handle cancels a scheduled task. Cancel is idempotent.
type Handle interface {
	Cancel()
}

// Scheduler registers recurring tasks.
type Scheduler interface {
	Every(name string, interval time.Duration, task Task) (Handle, error)
	Start()
	Stop()
}

// ErrInvalidInterval is returned for non-positive intervals.
var ErrInvalidInterval = errors.New("scheduler: interval must be positive")

// CronScheduler runs tasks on a robfig/cron instance. A task that is still
// running when its next tick arrives is skipped, so one task never
// overlaps itself.
type CronScheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCronScheduler creates a stopped scheduler.
func NewCronScheduler() *CronScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &CronScheduler{
		cron: cron.New(
			cron.WithLogger(cron.DiscardLogger),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Every schedules task at a fixed interval. Intervals are rounded to whole
// seconds with a minimum of one second.
func (s *CronScheduler) Every(name string, interval time.Duration, task Task) (Handle, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrInvalidInterval)
	}
	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		task(s.ctx)
	}))
	return &cronHandle{cron: s.cron, id: id}, nil
}

// Start launches the scheduler in its own goroutine.
func (s *CronScheduler) Start() {
	s.cron.Start()
}

// Stop cancels the task context and waits for running tasks to return.
func (s *CronScheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

type cronHandle struct {
	cron *cron.Cron
	id   cron.EntryID
}

func (h *cronHandle) Cancel() {
	h.cron.Remove(h.id)
}
