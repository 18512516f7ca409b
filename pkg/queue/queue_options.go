package queue

import (
	"context"
	"log/slog"
	"time"
)

// ctxBackground is used for instrument calls made outside any request scope.
var ctxBackground = context.Background()

// QueueOption is a functional option shared by Queue and DeadLetterQueue
type QueueOption func(*queueOptions)

type queueOptions struct {
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// WithMetrics shares a Metrics instance between the queue, the dead letter
// queue and the processor of one job type
func WithMetrics(m *Metrics) QueueOption {
	return func(o *queueOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithQueueLogger sets the logger for the queue
func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(o *queueOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) QueueOption {
	return func(o *queueOptions) {
		if now != nil {
			o.now = now
		}
	}
}
