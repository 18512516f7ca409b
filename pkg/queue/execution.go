package queue

import (
	"time"

	"github.com/google/uuid"
)

// Execution is one unit of work together with its scheduling metadata.
// Records are values: a retry produces a new record rather than mutating the
// one that failed, and a record lives in exactly one queue at a time.
type Execution[T any] struct {
	ID            uuid.UUID `json:"id"`
	Payload       T         `json:"payload"`
	Priority      Priority  `json:"priority"`
	Attempt       int       `json:"attempt"`
	LastError     string    `json:"last_error,omitempty"`
	EnqueuedAt    time.Time `json:"enqueued_at"`
	LastAttemptAt time.Time `json:"last_attempt_at,omitzero"`
	// NotBefore is set only when backoff enforcement is enabled on the processor.
	NotBefore time.Time `json:"not_before,omitzero"`
}

// NewExecution wraps a payload into a first-attempt record.
func NewExecution[T any](payload T, priority Priority) Execution[T] {
	return Execution[T]{
		ID:         uuid.New(),
		Payload:    payload,
		Priority:   priority,
		Attempt:    1,
		EnqueuedAt: time.Now(),
	}
}

// Age is how long the record has existed since it was first submitted.
func (e Execution[T]) Age(now time.Time) time.Duration {
	return now.Sub(e.EnqueuedAt)
}

// Eligible reports whether the record may be dequeued at now.
func (e Execution[T]) Eligible(now time.Time) bool {
	return e.NotBefore.IsZero() || !e.NotBefore.After(now)
}

// withRetry returns the record for the next attempt. ID and EnqueuedAt are
// preserved so the whole retry chain can be correlated.
func (e Execution[T]) withRetry(errMsg string, attemptedAt, notBefore time.Time) Execution[T] {
	next := e
	next.Attempt = e.Attempt + 1
	next.LastError = errMsg
	next.LastAttemptAt = attemptedAt
	next.NotBefore = notBefore
	return next
}

// withFailure records a terminal failure without advancing the attempt number.
func (e Execution[T]) withFailure(errMsg string, attemptedAt time.Time) Execution[T] {
	next := e
	next.LastError = errMsg
	next.LastAttemptAt = attemptedAt
	next.NotBefore = time.Time{}
	return next
}

// resetForRequeue starts the record over at attempt 1. LastError is kept so
// the operator can still see why it was dead-lettered.
func (e Execution[T]) resetForRequeue(now time.Time) Execution[T] {
	next := e
	next.Attempt = 1
	next.EnqueuedAt = now
	next.NotBefore = time.Time{}
	return next
}
