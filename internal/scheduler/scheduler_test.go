package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCronScheduler_Runs(t *testing.T) {
	s := NewCronScheduler()
	var runs atomic.Int32
	_, err := s.Every("tick", time.Second, func(context.Context) { runs.Add(1) })
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestCronScheduler_CancelAndStop(t *testing.T) {
	s := NewCronScheduler()
	var runs atomic.Int32
	h, err := s.Every("tick", time.Second, func(context.Context) { runs.Add(1) })
	require.NoError(t, err)
	h.Cancel()

	s.Start()
	time.Sleep(1500 * time.Millisecond)
	s.Stop()
	require.Zero(t, runs.Load())
}

func TestCronScheduler_StopCancelsTaskContext(t *testing.T) {
	s := NewCronScheduler()
	started := make(chan struct{})
	var cancelled atomic.Bool
	_, err := s.Every("long", time.Second, func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		cancelled.Store(true)
	})
	require.NoError(t, err)

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("task never started")
	}

	// Stop waits for the running task, which returns once ctx is cancelled.
	s.Stop()
	require.True(t, cancelled.Load())
}

func TestCronScheduler_InvalidInterval(t *testing.T) {
	s := NewCronScheduler()
	_, err := s.Every("bad", -time.Second, func(context.Context) {})
	require.True(t, errors.Is(err, ErrInvalidInterval))
}
