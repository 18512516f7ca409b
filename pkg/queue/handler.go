package queue

import (
	"context"
	"errors"
)

type (
	// Handler performs the domain work for one payload. A returned error (or a
	// panic) marks the attempt as failed. Handlers should be safe to run again
	// for the same payload, since failed attempts are retried.
	Handler[T any] interface {
		Handle(ctx context.Context, payload T) error
	}

	// HandlerFunc adapts a plain function to Handler.
	HandlerFunc[T any] func(ctx context.Context, payload T) error

	// TenantExtractor returns the tenant a payload belongs to. It is used for
	// metric tags and log attributes only.
	TenantExtractor[T any] func(payload T) string

	// DeadLetterArchiver receives a copy of every dead-lettered execution,
	// for example to keep it in durable storage for later export.
	DeadLetterArchiver[T any] interface {
		Archive(ctx context.Context, jobType string, exec Execution[T]) error
	}
)

func (f HandlerFunc[T]) Handle(ctx context.Context, payload T) error {
	return f(ctx, payload)
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the processor dead-letters the job immediately,
// whatever attempts the retry policy has left. Use it for failures such as a
// malformed payload. Permanent(nil) returns nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err, or any error it wraps, was marked Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
