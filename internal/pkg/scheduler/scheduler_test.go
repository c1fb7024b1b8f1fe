package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestIntervalRun(t *testing.T) {
	t.Run("FiresTaskOnTick", func(t *testing.T) {
		var runs atomic.Int64
		done := make(chan struct{})

		s := NewInterval("test", 5*time.Millisecond, 0, func(context.Context) error {
			if runs.Add(1) == 3 {
				close(done)
			}
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		errChan := make(chan error, 1)
		go func() { errChan <- s.Run(ctx) }()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected at least 3 runs, got %d", runs.Load())
		}

		cancel()
		if err := <-errChan; !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("TaskErrorDoesNotStopSchedule", func(t *testing.T) {
		var runs atomic.Int64
		done := make(chan struct{})

		s := NewInterval("test", 5*time.Millisecond, 0, func(context.Context) error {
			if runs.Add(1) == 2 {
				close(done)
			}
			return errors.New("boom")
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go s.Run(ctx) //nolint:errcheck // canceled below

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected schedule to keep running after task error, got %d runs", runs.Load())
		}
	})

	t.Run("RunTimeoutBoundsTask", func(t *testing.T) {
		deadlineSeen := make(chan bool, 1)

		s := NewInterval("test", 5*time.Millisecond, time.Millisecond, func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			select {
			case deadlineSeen <- ok:
			default:
			}
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go s.Run(ctx) //nolint:errcheck // canceled below

		select {
		case ok := <-deadlineSeen:
			if !ok {
				t.Fatalf("expected per-run deadline on task context")
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("expected task to run")
		}
	})
}
