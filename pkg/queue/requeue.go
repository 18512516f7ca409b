package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/villagecompute/jobkit/pkg/logger"
)

// Stats is a point-in-time view of a job type's backlog.
type Stats struct {
	JobType         string         `json:"job_type"`
	Depths          map[string]int `json:"depths"`
	TotalDepth      int            `json:"total_depth"`
	DeadLetterDepth int            `json:"dead_letter_depth"`
}

// DeadLetter is a payload-agnostic view of a dead-lettered execution, for
// operator tooling that handles many job types at once.
type DeadLetter struct {
	ID            uuid.UUID `json:"id"`
	Priority      Priority  `json:"priority"`
	Tenant        string    `json:"tenant,omitempty"`
	Attempt       int       `json:"attempt"`
	LastError     string    `json:"last_error,omitempty"`
	EnqueuedAt    time.Time `json:"enqueued_at"`
	LastAttemptAt time.Time `json:"last_attempt_at,omitzero"`
	Payload       any       `json:"payload"`
}

// Stats returns the current queue and dead letter depths.
func (p *Processor[T]) Stats() Stats {
	depths := make(map[string]int, numPriorities)
	for _, pr := range Priorities() {
		depths[pr.String()] = p.queue.Depth(pr)
	}
	return Stats{
		JobType:         p.name,
		Depths:          depths,
		TotalDepth:      p.queue.TotalDepth(),
		DeadLetterDepth: p.dlq.Depth(),
	}
}

// DeadLetters returns every dead-lettered execution, oldest first.
// The dead letter queue is not modified.
func (p *Processor[T]) DeadLetters() []DeadLetter {
	records := p.dlq.PeekAll()
	out := make([]DeadLetter, 0, len(records))
	for _, exec := range records {
		out = append(out, DeadLetter{
			ID:            exec.ID,
			Priority:      exec.Priority,
			Tenant:        p.tenantOf(exec.Payload),
			Attempt:       exec.Attempt,
			LastError:     exec.LastError,
			EnqueuedAt:    exec.EnqueuedAt,
			LastAttemptAt: exec.LastAttemptAt,
			Payload:       exec.Payload,
		})
	}
	return out
}

// Requeue re-submits a dead-lettered execution at attempt 1 and its original
// priority. This bypasses the exhaustion guarantee, so every call is logged.
// The record leaves the dead letter queue only if the queue admits it.
func (p *Processor[T]) Requeue(ctx context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requeueLocked(ctx, id)
}

func (p *Processor[T]) requeueLocked(ctx context.Context, id uuid.UUID) error {
	exec, ok := p.dlq.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrExecutionNotFound, id)
	}

	next := exec.resetForRequeue(p.now())
	if !p.queue.EnqueueExecution(next) {
		return fmt.Errorf("%w: %s", ErrQueueFull, exec.Priority)
	}
	p.dlq.Remove(id)

	tenant := p.tenantOf(exec.Payload)
	p.metrics.dlqRequeued.Add(ctx, 1, jobAttrs(exec.Priority, tenant))
	p.logger.WarnContext(ctx, "dead-lettered job re-submitted manually, attempt count reset",
		logger.JobType(p.name),
		logger.ExecutionID(id),
		logger.Priority(exec.Priority),
		logger.TenantID(tenant),
		slog.Int("previous_attempts", exec.Attempt),
		slog.String("last_error", exec.LastError))

	return nil
}

// RequeueAll re-submits every dead-lettered execution, oldest first. It stops
// at the first execution the queue rejects and returns how many were requeued.
func (p *Processor[T]) RequeueAll(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	requeued := 0
	for _, exec := range p.dlq.PeekAll() {
		if err := p.requeueLocked(ctx, exec.ID); err != nil {
			if errors.Is(err, ErrExecutionNotFound) {
				continue
			}
			return requeued, err
		}
		requeued++
	}
	return requeued, nil
}

// PurgeDeadLetters drops every dead-lettered execution and returns the count.
func (p *Processor[T]) PurgeDeadLetters() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := p.dlq.Clear()
	p.logger.Warn("dead letter queue purged",
		logger.JobType(p.name),
		slog.Int("dropped", n))
	return n
}
