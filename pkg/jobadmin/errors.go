package jobadmin

import "errors"

var (
	ErrUnknownJobType     = errors.New("unknown job type")
	ErrInvalidExecutionID = errors.New("invalid execution id")
	ErrInvalidLimit       = errors.New("limit must be a positive integer")
	ErrDrainUnavailable   = errors.New("no scheduler configured")
	ErrArchiveUnavailable = errors.New("no dead letter archive configured for job type")
)
