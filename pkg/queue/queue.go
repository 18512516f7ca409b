package queue

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/villagecompute/jobkit/pkg/logger"
)

// Queue holds one bounded FIFO buffer per priority class. Dequeue always takes
// from the highest non-empty class, so a steady stream of critical jobs can
// starve bulk jobs; that trade-off favours latency-sensitive work.
//
// Enqueue is safe from any number of goroutines. Dequeue is meant to be driven
// by a single Processor.
type Queue[T any] struct {
	name    string
	cfg     *Config
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	buffers [numPriorities][]Execution[T]

	gauge metric.Registration
}

// NewQueue creates an empty priority queue for the job type name.
func NewQueue[T any](name string, cfg *Config, opts ...QueueOption) (*Queue[T], error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if cfg == nil {
		return nil, ErrConfigNil
	}

	options := &queueOptions{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.metrics == nil {
		options.metrics = NewMetrics(name, nil)
	}

	q := &Queue[T]{
		name:    name,
		cfg:     cfg,
		metrics: options.metrics,
		logger:  options.logger,
		now:     options.now,
	}

	reg, err := q.metrics.observeQueueDepth(q.Depth)
	if err != nil {
		q.logger.Warn("failed to register queue depth gauge",
			logger.Queue(name),
			logger.Error(err))
	}
	q.gauge = reg

	return q, nil
}

// Name returns the job type served by the queue.
func (q *Queue[T]) Name() string {
	return q.name
}

// Enqueue wraps payload into a first-attempt record and admits it into the
// buffer for priority. It returns false, leaving the queue untouched, when the
// buffer is at capacity.
func (q *Queue[T]) Enqueue(payload T, priority Priority) bool {
	exec := NewExecution(payload, priority)
	exec.EnqueuedAt = q.now()
	return q.EnqueueExecution(exec)
}

// EnqueueExecution admits an existing record, keeping its attempt number.
func (q *Queue[T]) EnqueueExecution(exec Execution[T]) bool {
	p := exec.Priority
	if !p.Valid() {
		q.logger.Error("rejected execution with invalid priority",
			logger.Queue(q.name),
			logger.ExecutionID(exec.ID),
			logger.Priority(p))
		return false
	}

	capacity, bounded := q.cfg.Capacity(p)

	q.mu.Lock()
	if bounded && len(q.buffers[p]) >= capacity {
		q.mu.Unlock()

		q.metrics.overflow.Add(ctxBackground, 1, metric.WithAttributes(priorityAttr(p)))
		q.logger.Warn("queue at capacity",
			logger.Queue(q.name),
			logger.Priority(p),
			slog.Int("capacity", capacity))
		return false
	}
	q.buffers[p] = append(q.buffers[p], exec)
	q.mu.Unlock()

	q.metrics.enqueued.Add(ctxBackground, 1, metric.WithAttributes(priorityAttr(p)))
	return true
}

// DequeueNext removes and returns the head of the highest-priority non-empty
// buffer. Records whose NotBefore lies in the future are passed over; FIFO
// order holds among the eligible records of a class.
func (q *Queue[T]) DequeueNext() (Execution[T], bool) {
	now := q.now()

	q.mu.Lock()
	exec, ok := q.takeNextLocked(now)
	q.mu.Unlock()

	if ok {
		attrs := metric.WithAttributes(priorityAttr(exec.Priority))
		q.metrics.polled.Add(ctxBackground, 1, attrs)
		q.metrics.waitTime.Record(ctxBackground, exec.Age(now).Seconds(), attrs)
	}
	return exec, ok
}

func (q *Queue[T]) takeNextLocked(now time.Time) (Execution[T], bool) {
	var zero Execution[T]

	for _, p := range Priorities() {
		buf := q.buffers[p]
		idx := slices.IndexFunc(buf, func(e Execution[T]) bool { return e.Eligible(now) })
		if idx < 0 {
			continue
		}

		exec := buf[idx]
		if idx == 0 {
			// Clear the slot so the payload can be collected
			buf[0] = zero
			q.buffers[p] = buf[1:]
		} else {
			q.buffers[p] = slices.Delete(buf, idx, idx+1)
		}
		return exec, true
	}
	return zero, false
}

// Depth returns the number of records waiting in the buffer for p.
func (q *Queue[T]) Depth(p Priority) int {
	if !p.Valid() {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buffers[p])
}

// TotalDepth returns the sum of all per-class depths.
func (q *Queue[T]) TotalDepth() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	total := 0
	for _, buf := range q.buffers {
		total += len(buf)
	}
	return total
}

// Clear drops every waiting record.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	for p := range q.buffers {
		q.buffers[p] = nil
	}
	q.mu.Unlock()

	q.logger.Info("queue cleared", logger.Queue(q.name))
}

// Close unregisters the depth gauge. The queue stays usable.
func (q *Queue[T]) Close() error {
	if q.gauge == nil {
		return nil
	}
	return q.gauge.Unregister()
}
