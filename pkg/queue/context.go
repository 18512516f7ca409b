package queue

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/villagecompute/jobkit/pkg/logger"
)

type jobInfoKey struct{}

// JobInfo identifies the execution a handler is running. The processor puts it
// in the context passed to Handle.
type JobInfo struct {
	JobType     string
	ExecutionID uuid.UUID
	Priority    Priority
	Attempt     int
	Tenant      string
}

func withJobInfo(ctx context.Context, info JobInfo) context.Context {
	return context.WithValue(ctx, jobInfoKey{}, info)
}

// JobInfoFromContext returns the execution the context belongs to, if any.
func JobInfoFromContext(ctx context.Context) (JobInfo, bool) {
	if ctx == nil {
		return JobInfo{}, false
	}
	info, ok := ctx.Value(jobInfoKey{}).(JobInfo)
	return info, ok
}

// LogAttrsFromContext is a logger.ContextExtractor that adds a "job" group to
// records logged from inside a handler.
func LogAttrsFromContext(ctx context.Context) (slog.Attr, bool) {
	info, ok := JobInfoFromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return logger.Group("job",
		logger.JobType(info.JobType),
		logger.ExecutionID(info.ExecutionID),
		logger.Priority(info.Priority),
		logger.Attempt(info.Attempt),
		logger.TenantID(info.Tenant),
	), true
}
