// Package redis connects to Redis and keeps a durable archive of
// dead-lettered jobs.
//
// Connect retries the initial ping according to Config, and Healthcheck
// returns a probe suitable for readiness endpoints. DeadLetterArchive stores
// every execution the processor dead-letters in a Redis list named
// {prefix}:{job type}:dlq, trimmed to Config.ArchiveMaxLen entries.
//
// # Usage
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	archive := redis.NewDeadLetterArchive[Notification](client, cfg)
//	p, err := queue.NewProcessor("notification", q, dlq, jobCfg, handler, tenantOf,
//	    queue.WithDeadLetterArchive[Notification](archive))
//
// # Errors
//
// Sentinel errors (ErrRedisNotReady, ErrArchiveWrite and so on) are joined
// with the go-redis cause, so both errors.Is checks work.
package redis
