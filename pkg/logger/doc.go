// Package logger builds the *slog.Logger used across jobkit and provides
// attribute constructors that keep log keys consistent between the queue,
// the scheduler and the admin API.
//
// # Architecture
//
// New picks slog.NewTextHandler or slog.NewJSONHandler from the configured
// Format and wraps it with LogHandlerDecorator, which runs every registered
// ContextExtractor before delegating. The queue package stores the running
// job in the handler context, so an extractor can add job_type, execution_id
// and attempt to every line a handler logs.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "jobsd"),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithContextExtractors(queue.LogAttrsFromContext),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "job completed",
//	    logger.JobType("notification"),
//	    logger.Attempt(2),
//	    logger.Duration(elapsed),
//	)
//
// # Configuration
//
//   - WithDevelopment / WithStaging / WithProduction / WithEnvironment: per-environment defaults.
//   - WithFormat / WithTextFormatter / WithJSONFormatter: output format.
//   - WithLevel / WithLevelName: minimum level.
//   - WithAttr: static attributes.
//   - WithContextExtractors / WithContextValue: attributes taken from context.
//
// Error, Errors, ExecutionID and TenantID return an empty Attr for nil or
// empty input, so callers can pass them unconditionally.
package logger
