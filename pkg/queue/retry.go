package queue

import (
	"fmt"
	"math"
	"time"
)

// RetryPolicy maps an attempt number to a backoff delay and caps the number of
// attempts. The zero value is not usable; build policies with NewRetryPolicy or
// one of the presets.
type RetryPolicy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

// NewRetryPolicy validates and builds a retry policy.
// maxAttempts counts the first attempt, so maxAttempts = 1 means no retries.
func NewRetryPolicy(maxAttempts int, initialDelay, maxDelay time.Duration, multiplier float64) (RetryPolicy, error) {
	switch {
	case maxAttempts < 1:
		return RetryPolicy{}, fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidRetryPolicy, maxAttempts)
	case math.IsNaN(multiplier) || multiplier < 1:
		return RetryPolicy{}, fmt.Errorf("%w: backoff multiplier must be >= 1, got %v", ErrInvalidRetryPolicy, multiplier)
	case initialDelay < 0 || maxDelay < 0:
		return RetryPolicy{}, fmt.Errorf("%w: delays cannot be negative", ErrInvalidRetryPolicy)
	case maxDelay < initialDelay:
		return RetryPolicy{}, fmt.Errorf("%w: max delay %s is below initial delay %s", ErrInvalidRetryPolicy, maxDelay, initialDelay)
	}

	return RetryPolicy{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		multiplier:   multiplier,
	}, nil
}

// MustRetryPolicy is like NewRetryPolicy but panics on invalid input.
// Intended for package-level policy definitions.
func MustRetryPolicy(maxAttempts int, initialDelay, maxDelay time.Duration, multiplier float64) RetryPolicy {
	p, err := NewRetryPolicy(maxAttempts, initialDelay, maxDelay, multiplier)
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultRetryPolicy suits most background work: 3 attempts, 1s, 2s, 4s... capped at 5m.
func DefaultRetryPolicy() RetryPolicy {
	return MustRetryPolicy(3, time.Second, 5*time.Minute, 2)
}

// AggressiveRetryPolicy is meant for critical work: more attempts, shorter delays.
func AggressiveRetryPolicy() RetryPolicy {
	return MustRetryPolicy(5, 500*time.Millisecond, 30*time.Second, 1.5)
}

// NoRetryPolicy allows a single attempt. Used for bulk work where a duplicate
// run costs more than losing it to the dead letter queue.
func NoRetryPolicy() RetryPolicy {
	return MustRetryPolicy(1, 0, 0, 1)
}

// Delay returns min(initialDelay * multiplier^(attempt-1), maxDelay).
// Attempts below 1 are treated as 1.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := float64(p.initialDelay) * math.Pow(p.multiplier, float64(attempt-1))
	// Compare in float space: large attempts overflow int64 before the cap applies
	if math.IsInf(d, 0) || d >= float64(p.maxDelay) {
		return p.maxDelay
	}
	return time.Duration(d)
}

// ShouldRetry reports whether a job that just failed its attempt-th try gets another one.
func (p RetryPolicy) ShouldRetry(attempt int) bool {
	return attempt < p.maxAttempts
}

func (p RetryPolicy) MaxAttempts() int            { return p.maxAttempts }
func (p RetryPolicy) InitialDelay() time.Duration { return p.initialDelay }
func (p RetryPolicy) MaxDelay() time.Duration     { return p.maxDelay }
func (p RetryPolicy) Multiplier() float64         { return p.multiplier }

// String renders the policy for logs.
func (p RetryPolicy) String() string {
	return fmt.Sprintf("attempts=%d initial=%s max=%s x%g", p.maxAttempts, p.initialDelay, p.maxDelay, p.multiplier)
}
