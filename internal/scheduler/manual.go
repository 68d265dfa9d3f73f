package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ManualScheduler is a Scheduler driven by Advance instead of real time.
// Tasks run synchronously on the goroutine calling Advance.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	started bool
	tasks   []*manualTask
	ctx     context.Context
	cancel  context.CancelFunc
}

type manualTask struct {
	name      string
	interval  time.Duration
	next      time.Time
	task      Task
	cancelled bool
	runs      int
}

// NewManualScheduler creates a stopped scheduler whose clock reads start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &ManualScheduler{now: start, ctx: ctx, cancel: cancel}
}

// Now returns the virtual time. It can be used as a store clock.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Every schedules task to first run one interval from now.
func (s *ManualScheduler) Every(name string, interval time.Duration, task Task) (Handle, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrInvalidInterval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{name: name, interval: interval, next: s.now.Add(interval), task: task}
	s.tasks = append(s.tasks, t)
	return &manualHandle{s: s, t: t}, nil
}

func (s *ManualScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
}

func (s *ManualScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	s.cancel()
}

// Advance moves the clock forward by d, running every task that comes due
// in order of its due time. While stopped only the clock moves.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)

	for s.started {
		due := s.nextDue(target)
		if due == nil {
			break
		}
		s.now = due.next
		due.next = due.next.Add(due.interval)
		due.runs++

		// Tasks may read Now, so they run unlocked.
		s.mu.Unlock()
		due.task(s.ctx)
		s.mu.Lock()
	}

	s.now = target
	s.mu.Unlock()
}

// Runs reports how often the named task has fired.
func (s *ManualScheduler) Runs(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, t := range s.tasks {
		if t.name == name {
			total += t.runs
		}
	}
	return total
}

// nextDue returns the earliest live task due at or before target.
// Registration order breaks ties.
func (s *ManualScheduler) nextDue(target time.Time) *manualTask {
	var due *manualTask
	for _, t := range s.tasks {
		if t.cancelled || t.next.After(target) {
			continue
		}
		if due == nil || t.next.Before(due.next) {
			due = t
		}
	}
	return due
}

type manualHandle struct {
	s *ManualScheduler
	t *manualTask
}

func (h *manualHandle) Cancel() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.t.cancelled = true
}
