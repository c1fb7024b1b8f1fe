package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Task is a unit of periodic work. It receives the tick context and returns
// an error only for failures worth logging; returning an error never stops
// the schedule.
type Task func(ctx context.Context) error

// Interval runs a named task on a fixed interval until the context is
// canceled. The first run happens one interval after Run is called, not
// immediately.
type Interval struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	task     Task
}

// NewInterval builds an interval schedule. timeout bounds each individual
// run; pass 0 to let a run inherit the parent context deadline only.
func NewInterval(name string, interval, timeout time.Duration, task Task) *Interval {
	return &Interval{name: name, interval: interval, timeout: timeout, task: task}
}

// Run blocks, firing the task every interval, until ctx is canceled. It
// returns ctx.Err() so it can be scheduled on a goroutine manager and
// surfaced on shutdown.
func (s *Interval) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "scheduler started", "name", s.name, "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "scheduler stopped", "name", s.name)
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Interval) runOnce(ctx context.Context) {
	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.task(runCtx); err != nil {
		slog.ErrorContext(ctx, "scheduler task failed", "name", s.name, "error", err)
	}
}
