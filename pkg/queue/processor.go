package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/villagecompute/jobkit/pkg/logger"
)

// Processor runs the processing cycle for one job type: take the next ready
// execution, call the handler, then either discard the execution, re-enqueue
// it for another attempt, or move it to the dead letter queue.
//
// A Processor is the only component that moves executions between its Queue
// and DeadLetterQueue. Calls are serialized, so at most one execution of the
// job type is in flight per Processor. Running several Processors against the
// same Queue is not supported.
type Processor[T any] struct {
	name     string
	queue    *Queue[T]
	dlq      *DeadLetterQueue[T]
	cfg      *Config
	handler  Handler[T]
	tenantOf TenantExtractor[T]
	metrics  *Metrics

	// Configuration
	logger         *slog.Logger
	now            func() time.Time
	enforceBackoff bool
	archiver       DeadLetterArchiver[T]

	mu sync.Mutex
}

// NewProcessor wires a handler to a queue and its dead letter queue.
// tenantOf may be nil, in which case every job is tagged with an empty tenant.
func NewProcessor[T any](
	name string,
	q *Queue[T],
	dlq *DeadLetterQueue[T],
	cfg *Config,
	handler Handler[T],
	tenantOf TenantExtractor[T],
	opts ...ProcessorOption[T],
) (*Processor[T], error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if q == nil || dlq == nil {
		return nil, ErrQueueNil
	}
	if cfg == nil {
		return nil, ErrConfigNil
	}
	if handler == nil {
		return nil, ErrHandlerNil
	}
	if tenantOf == nil {
		tenantOf = func(T) string { return "" }
	}

	options := &processorOptions[T]{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Processor[T]{
		name:           name,
		queue:          q,
		dlq:            dlq,
		cfg:            cfg,
		handler:        handler,
		tenantOf:       tenantOf,
		metrics:        q.metrics,
		logger:         options.logger,
		now:            options.now,
		enforceBackoff: options.enforceBackoff,
		archiver:       options.archiver,
	}, nil
}

// Name returns the job type handled by the processor.
func (p *Processor[T]) Name() string {
	return p.name
}

// ProcessNext handles the highest-priority ready execution. It returns false
// when there was nothing to do. Handler failures never surface here; they are
// routed to a retry or to the dead letter queue.
func (p *Processor[T]) ProcessNext(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	exec, ok := p.queue.DequeueNext()
	if !ok {
		return false
	}

	p.process(ctx, exec)
	return true
}

// ProcessAllPending calls ProcessNext until the queue has no ready execution
// or ctx is done, and returns the number of executions processed.
func (p *Processor[T]) ProcessAllPending(ctx context.Context) int {
	return p.ProcessBatch(ctx, 0)
}

// ProcessBatch is ProcessAllPending with an upper bound on the number of
// executions handled; limit <= 0 means no bound.
func (p *Processor[T]) ProcessBatch(ctx context.Context, limit int) int {
	processed := 0
	for ctx.Err() == nil {
		if limit > 0 && processed >= limit {
			break
		}
		if !p.ProcessNext(ctx) {
			break
		}
		processed++
	}
	return processed
}

// process runs one attempt of exec
func (p *Processor[T]) process(ctx context.Context, exec Execution[T]) {
	tenant := p.tenantOf(exec.Payload)
	priority := exec.Priority
	start := p.now()

	if exec.Attempt == 1 && exec.Age(start) > priority.TargetLatency() {
		p.metrics.latencyExceeded.Add(ctx, 1, jobAttrs(priority, tenant))
	}
	p.metrics.started.Add(ctx, 1, jobAttrs(priority, tenant))

	err := p.invoke(withJobInfo(ctx, JobInfo{
		JobType:     p.name,
		ExecutionID: exec.ID,
		Priority:    priority,
		Attempt:     exec.Attempt,
		Tenant:      tenant,
	}), exec.Payload)
	duration := p.now().Sub(start)

	if err != nil {
		p.handleFailure(ctx, exec, tenant, err, start, duration)
		return
	}
	p.handleSuccess(ctx, exec, tenant, duration)
}

// invoke calls the handler, turning a panic into an ordinary failure
func (p *Processor[T]) invoke(ctx context.Context, payload T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in handler: %v", r)
		}
	}()
	return p.handler.Handle(ctx, payload)
}

func (p *Processor[T]) handleSuccess(ctx context.Context, exec Execution[T], tenant string, duration time.Duration) {
	attrs := jobAttrs(exec.Priority, tenant)

	p.metrics.duration.Record(ctx, duration.Seconds(),
		jobAttrs(exec.Priority, tenant, attribute.String(attrStatus, "success")))
	p.metrics.completed.Add(ctx, 1, attrs)
	if exec.Attempt > 1 {
		p.metrics.recovered.Add(ctx, 1, attrs)
	}

	p.logger.InfoContext(ctx, "job completed",
		logger.JobType(p.name),
		logger.ExecutionID(exec.ID),
		logger.Priority(exec.Priority),
		logger.TenantID(tenant),
		logger.Attempt(exec.Attempt),
		logger.Duration(duration))
}

// handleFailure decides between retry and dead letter. The decision looks at
// the attempt count only, unless the handler marked the error Permanent.
func (p *Processor[T]) handleFailure(ctx context.Context, exec Execution[T], tenant string, execErr error, attemptedAt time.Time, duration time.Duration) {
	priority := exec.Priority
	policy := p.cfg.RetryPolicy(priority)
	errMsg := execErr.Error()

	p.metrics.duration.Record(ctx, duration.Seconds(),
		jobAttrs(priority, tenant, attribute.String(attrStatus, "failed")))
	p.metrics.failed.Add(ctx, 1, jobAttrs(priority, tenant))

	p.logger.ErrorContext(ctx, "job failed",
		logger.JobType(p.name),
		logger.ExecutionID(exec.ID),
		logger.Priority(priority),
		logger.TenantID(tenant),
		logger.Attempt(exec.Attempt),
		slog.Int("max_attempts", policy.MaxAttempts()),
		logger.Duration(duration),
		logger.Error(execErr))

	if IsPermanent(execErr) {
		p.deadLetter(ctx, exec.withFailure(errMsg, attemptedAt), tenant, ReasonPermanent)
		return
	}

	if !policy.ShouldRetry(exec.Attempt) {
		p.deadLetter(ctx, exec.withFailure(errMsg, attemptedAt), tenant, ReasonAttemptsExhausted)
		return
	}

	delay := policy.Delay(exec.Attempt)
	var notBefore time.Time
	if p.enforceBackoff {
		notBefore = attemptedAt.Add(delay)
	}

	next := exec.withRetry(errMsg, attemptedAt, notBefore)
	if !p.queue.EnqueueExecution(next) {
		// The retry lost its slot to capacity; keep the evidence instead of dropping it
		p.deadLetter(ctx, exec.withFailure(errMsg, attemptedAt), tenant, ReasonOverflow)
		return
	}

	p.metrics.retryScheduled.Add(ctx, 1, jobAttrs(priority, tenant))
	p.logger.InfoContext(ctx, "scheduled job retry",
		logger.JobType(p.name),
		logger.ExecutionID(exec.ID),
		slog.Int("next_attempt", next.Attempt),
		slog.Int("max_attempts", policy.MaxAttempts()),
		slog.Duration("backoff", delay),
		slog.Bool("backoff_enforced", p.enforceBackoff))
}

func (p *Processor[T]) deadLetter(ctx context.Context, exec Execution[T], tenant, reason string) {
	p.dlq.Add(exec)
	p.metrics.exhausted.Add(ctx, 1, jobAttrs(exec.Priority, tenant, attribute.String(attrReason, reason)))

	if p.archiver == nil {
		return
	}
	if err := p.archiver.Archive(ctx, p.name, exec); err != nil {
		p.logger.ErrorContext(ctx, "failed to archive dead-lettered job",
			logger.JobType(p.name),
			logger.ExecutionID(exec.ID),
			logger.Error(err))
	}
}
