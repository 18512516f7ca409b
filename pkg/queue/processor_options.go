package queue

import (
	"log/slog"
	"time"
)

// ProcessorOption is a functional option for configuring a processor
type ProcessorOption[T any] func(*processorOptions[T])

type processorOptions[T any] struct {
	logger         *slog.Logger
	now            func() time.Time
	enforceBackoff bool
	archiver       DeadLetterArchiver[T]
}

// WithProcessorLogger sets the logger for the processor
func WithProcessorLogger[T any](logger *slog.Logger) ProcessorOption[T] {
	return func(o *processorOptions[T]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProcessorClock replaces time.Now, mostly for tests
func WithProcessorClock[T any](now func() time.Time) ProcessorOption[T] {
	return func(o *processorOptions[T]) {
		if now != nil {
			o.now = now
		}
	}
}

// WithBackoffEnforcement makes retries wait out their backoff delay.
// By default a failed job is re-enqueued immediately and the delay is only
// logged, leaving spacing to the trigger cadence. With enforcement on, the
// retried execution carries a NotBefore time and the queue skips it until then.
func WithBackoffEnforcement[T any]() ProcessorOption[T] {
	return func(o *processorOptions[T]) {
		o.enforceBackoff = true
	}
}

// WithDeadLetterArchive sends a copy of every dead-lettered execution to a.
// Archive errors are logged and never affect processing.
func WithDeadLetterArchive[T any](a DeadLetterArchiver[T]) ProcessorOption[T] {
	return func(o *processorOptions[T]) {
		if a != nil {
			o.archiver = a
		}
	}
}
