package queue

import (
	"log/slog"
	"time"
)

// SchedulerOption is a functional option for configuring a scheduler
type SchedulerOption func(*schedulerOptions)

type schedulerOptions struct {
	checkInterval time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// WithCheckInterval sets how often the scheduler looks for due drains
func WithCheckInterval(d time.Duration) SchedulerOption {
	return func(o *schedulerOptions) {
		if d > 0 {
			o.checkInterval = d
		}
	}
}

// WithSchedulerLogger sets the logger for the scheduler
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(o *schedulerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSchedulerClock replaces time.Now, mostly for tests
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(o *schedulerOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// DrainOption is a functional option for a registered drain
type DrainOption func(*drainOptions)

type drainOptions struct {
	batchLimit int
}

// WithBatchLimit caps the jobs handled per run; the rest wait for the next run.
// Report exports use 50 so one tick never turns into a long-running job.
func WithBatchLimit(n int) DrainOption {
	return func(o *drainOptions) {
		if n > 0 {
			o.batchLimit = n
		}
	}
}
