package queue

import "errors"

// Common errors
var (
	// ErrInvalidPriority is returned when a priority is outside the closed set of classes
	ErrInvalidPriority = errors.New("invalid job priority")

	// ErrInvalidRetryPolicy is returned when a retry policy is constructed with invalid values
	ErrInvalidRetryPolicy = errors.New("invalid retry policy")

	// ErrInvalidCapacity is returned when a queue capacity is not positive
	ErrInvalidCapacity = errors.New("queue capacity must be greater than zero")

	// ErrIncompleteConfig is returned when a priority class has no retry policy or capacity
	ErrIncompleteConfig = errors.New("job configuration is incomplete")

	// ErrConfigNil is returned when a nil configuration is provided
	ErrConfigNil = errors.New("job configuration cannot be nil")

	// ErrQueueNil is returned when a nil queue or dead-letter queue is provided
	ErrQueueNil = errors.New("queue cannot be nil")

	// ErrHandlerNil is returned when a processor is created without a handler
	ErrHandlerNil = errors.New("job handler cannot be nil")

	// ErrEmptyName is returned when a queue or processor has no job type name
	ErrEmptyName = errors.New("job type name cannot be empty")

	// ErrQueueFull is returned when a manual requeue is rejected by queue capacity
	ErrQueueFull = errors.New("queue is at capacity for priority")

	// ErrExecutionNotFound is returned when a dead-lettered execution does not exist
	ErrExecutionNotFound = errors.New("execution not found in dead letter queue")

	// ErrDrainAlreadyRegistered is returned when trying to register a duplicate drain
	ErrDrainAlreadyRegistered = errors.New("drain already registered")

	// ErrDrainNotFound is returned when a drain with the given name is not registered
	ErrDrainNotFound = errors.New("drain not registered")

	// ErrSchedulerNotConfigured is returned when scheduler has no drains
	ErrSchedulerNotConfigured = errors.New("scheduler has no registered drains")

	// ErrNoScheduleSpecified is returned when a drain is registered without a schedule
	ErrNoScheduleSpecified = errors.New("no schedule specified for drain")

	// ErrInvalidConfigFile is returned when a job configuration file cannot be decoded
	ErrInvalidConfigFile = errors.New("invalid job configuration file")

	// ErrInvalidSchedule is returned when a schedule string cannot be parsed
	ErrInvalidSchedule = errors.New("invalid drain schedule")
)
