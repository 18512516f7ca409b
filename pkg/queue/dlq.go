package queue

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/villagecompute/jobkit/pkg/logger"
)

// DeadLetterQueue keeps executions that ran out of attempts, in the order they
// arrived. It has no capacity limit: rejecting a record here would lose the
// only evidence of the failure. Purging is an operator decision.
type DeadLetterQueue[T any] struct {
	name    string
	metrics *Metrics
	logger  *slog.Logger

	mu      sync.RWMutex
	records []Execution[T]

	gauge metric.Registration
}

// NewDeadLetterQueue creates an empty dead letter queue for the job type name.
func NewDeadLetterQueue[T any](name string, opts ...QueueOption) (*DeadLetterQueue[T], error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	options := &queueOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.metrics == nil {
		options.metrics = NewMetrics(name, nil)
	}

	d := &DeadLetterQueue[T]{
		name:    name,
		metrics: options.metrics,
		logger:  options.logger,
	}

	reg, err := d.metrics.observeDLQDepth(d.Depth)
	if err != nil {
		d.logger.Warn("failed to register dead letter depth gauge",
			logger.Queue(name),
			logger.Error(err))
	}
	d.gauge = reg

	return d, nil
}

// Add appends a terminal execution.
func (d *DeadLetterQueue[T]) Add(exec Execution[T]) {
	d.mu.Lock()
	d.records = append(d.records, exec)
	d.mu.Unlock()

	d.metrics.dlqAdded.Add(ctxBackground, 1, metric.WithAttributes(priorityAttr(exec.Priority)))

	d.logger.Warn("job moved to dead letter queue",
		logger.Queue(d.name),
		logger.ExecutionID(exec.ID),
		logger.Priority(exec.Priority),
		logger.Attempt(exec.Attempt),
		slog.String("last_error", exec.LastError))
}

// Poll removes and returns the oldest execution.
func (d *DeadLetterQueue[T]) Poll() (Execution[T], bool) {
	d.mu.Lock()
	if len(d.records) == 0 {
		d.mu.Unlock()
		var zero Execution[T]
		return zero, false
	}
	exec := d.records[0]
	d.records = slices.Delete(d.records, 0, 1)
	d.mu.Unlock()

	d.metrics.dlqRemoved.Add(ctxBackground, 1)
	return exec, true
}

// PeekAll returns a copy of every held execution, oldest first, without
// removing anything.
func (d *DeadLetterQueue[T]) PeekAll() []Execution[T] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.records)
}

// Get returns the execution with the given ID without removing it.
func (d *DeadLetterQueue[T]) Get(id uuid.UUID) (Execution[T], bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, exec := range d.records {
		if exec.ID == id {
			return exec, true
		}
	}
	var zero Execution[T]
	return zero, false
}

// Remove deletes the execution with the given ID and reports whether it was held.
func (d *DeadLetterQueue[T]) Remove(id uuid.UUID) bool {
	d.mu.Lock()
	idx := slices.IndexFunc(d.records, func(e Execution[T]) bool { return e.ID == id })
	if idx < 0 {
		d.mu.Unlock()
		return false
	}
	d.records = slices.Delete(d.records, idx, idx+1)
	d.mu.Unlock()

	d.metrics.dlqRemoved.Add(ctxBackground, 1)
	return true
}

// Depth returns the number of held executions.
func (d *DeadLetterQueue[T]) Depth() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// Clear drops every held execution and returns how many were dropped.
func (d *DeadLetterQueue[T]) Clear() int {
	d.mu.Lock()
	n := len(d.records)
	d.records = nil
	d.mu.Unlock()

	d.logger.Info("dead letter queue cleared",
		logger.Queue(d.name),
		slog.Int("dropped", n))
	return n
}

// Close unregisters the depth gauge.
func (d *DeadLetterQueue[T]) Close() error {
	if d.gauge == nil {
		return nil
	}
	return d.gauge.Unregister()
}
