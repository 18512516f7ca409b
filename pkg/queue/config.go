package queue

import (
	"errors"
	"fmt"
)

// Config maps every priority class to a retry policy and a queue capacity.
// It is built once per job type at startup and never mutated afterwards.
type Config struct {
	policies   [numPriorities]RetryPolicy
	capacities [numPriorities]int // 0 means unbounded
}

// ConfigOption is a functional option for building a Config
type ConfigOption func(*configBuilder)

type configBuilder struct {
	policies   map[Priority]RetryPolicy
	capacities map[Priority]int
	errs       []error
}

// WithRetryPolicy sets the retry policy for a priority class
func WithRetryPolicy(p Priority, policy RetryPolicy) ConfigOption {
	return func(b *configBuilder) {
		if !p.Valid() {
			b.errs = append(b.errs, fmt.Errorf("%w: %d", ErrInvalidPriority, p))
			return
		}
		if policy.maxAttempts < 1 {
			b.errs = append(b.errs, fmt.Errorf("%w: %s policy was not built with NewRetryPolicy", ErrInvalidRetryPolicy, p))
			return
		}
		b.policies[p] = policy
	}
}

// WithCapacity bounds the buffer of a priority class to n records
func WithCapacity(p Priority, n int) ConfigOption {
	return func(b *configBuilder) {
		if !p.Valid() {
			b.errs = append(b.errs, fmt.Errorf("%w: %d", ErrInvalidPriority, p))
			return
		}
		if n <= 0 {
			b.errs = append(b.errs, fmt.Errorf("%w: %s got %d", ErrInvalidCapacity, p, n))
			return
		}
		b.capacities[p] = n
	}
}

// WithUnboundedCapacity lets a priority class grow without limit
func WithUnboundedCapacity(p Priority) ConfigOption {
	return func(b *configBuilder) {
		if !p.Valid() {
			b.errs = append(b.errs, fmt.Errorf("%w: %d", ErrInvalidPriority, p))
			return
		}
		b.capacities[p] = 0
	}
}

// NewConfig builds a Config. Every priority class must receive both a retry
// policy and a capacity; a missing entry is an error, not a default.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	b := &configBuilder{
		policies:   make(map[Priority]RetryPolicy, numPriorities),
		capacities: make(map[Priority]int, numPriorities),
	}
	for _, opt := range opts {
		opt(b)
	}

	for _, p := range Priorities() {
		if _, ok := b.policies[p]; !ok {
			b.errs = append(b.errs, fmt.Errorf("%w: no retry policy for %s", ErrIncompleteConfig, p))
		}
		if _, ok := b.capacities[p]; !ok {
			b.errs = append(b.errs, fmt.Errorf("%w: no capacity for %s", ErrIncompleteConfig, p))
		}
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	cfg := &Config{}
	for p, policy := range b.policies {
		cfg.policies[p] = policy
	}
	for p, n := range b.capacities {
		cfg.capacities[p] = n
	}
	return cfg, nil
}

// DefaultConfig returns the stock configuration: aggressive retries for critical
// work, no retries for bulk work, and the default policy in between.
func DefaultConfig() *Config {
	cfg, err := NewConfig(
		WithRetryPolicy(PriorityCritical, AggressiveRetryPolicy()),
		WithRetryPolicy(PriorityHigh, DefaultRetryPolicy()),
		WithRetryPolicy(PriorityDefault, DefaultRetryPolicy()),
		WithRetryPolicy(PriorityLow, DefaultRetryPolicy()),
		WithRetryPolicy(PriorityBulk, NoRetryPolicy()),
		WithCapacity(PriorityCritical, 1000),
		WithCapacity(PriorityHigh, 5000),
		WithCapacity(PriorityDefault, 10000),
		WithCapacity(PriorityLow, 10000),
		WithUnboundedCapacity(PriorityBulk),
	)
	if err != nil {
		panic(err)
	}
	return cfg
}

// RetryPolicy returns the policy configured for p.
func (c *Config) RetryPolicy(p Priority) RetryPolicy {
	if !p.Valid() {
		return NoRetryPolicy()
	}
	return c.policies[p]
}

// Capacity returns the capacity configured for p and whether it is bounded.
func (c *Config) Capacity(p Priority) (n int, bounded bool) {
	if !p.Valid() {
		return 0, true
	}
	n = c.capacities[p]
	return n, n > 0
}
