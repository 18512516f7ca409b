package queue

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Priority is the scheduling class of a job. Lower numeric value means higher
// precedence; the order is fixed at compile time and never read from configuration.
type Priority uint8

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityDefault
	PriorityLow
	PriorityBulk

	numPriorities = int(PriorityBulk) + 1
)

var priorityNames = [numPriorities]string{
	PriorityCritical: "critical",
	PriorityHigh:     "high",
	PriorityDefault:  "default",
	PriorityLow:      "low",
	PriorityBulk:     "bulk",
}

// targetLatencies is how long a job of each class may wait in the queue before
// it is considered late. Bulk work has no target.
var targetLatencies = [numPriorities]time.Duration{
	PriorityCritical: time.Second,
	PriorityHigh:     5 * time.Second,
	PriorityDefault:  30 * time.Second,
	PriorityLow:      2 * time.Minute,
	PriorityBulk:     time.Duration(math.MaxInt64),
}

// Priorities returns all classes in descending precedence order.
func Priorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityDefault, PriorityLow, PriorityBulk}
}

// Valid reports whether p is one of the defined classes.
func (p Priority) Valid() bool {
	return int(p) < numPriorities
}

// String returns the lowercase class name, which is also the metric tag value.
func (p Priority) String() string {
	if !p.Valid() {
		return fmt.Sprintf("priority(%d)", uint8(p))
	}
	return priorityNames[p]
}

// Before reports whether p is dequeued ahead of other.
func (p Priority) Before(other Priority) bool {
	return p < other
}

// TargetLatency returns the queue wait budget for the class.
func (p Priority) TargetLatency() time.Duration {
	if !p.Valid() {
		return 0
	}
	return targetLatencies[p]
}

// ParsePriority converts a class name (case-insensitive) into a Priority.
func ParsePriority(s string) (Priority, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range priorityNames {
		if n == name {
			return Priority(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, ErrInvalidPriority
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
