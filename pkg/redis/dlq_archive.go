package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/villagecompute/jobkit/pkg/queue"
)

// ListClient is the subset of go-redis the archive needs.
// *redis.Client and redis.UniversalClient satisfy it.
type ListClient interface {
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ArchivedExecution is one dead-lettered execution as stored in Redis.
type ArchivedExecution[T any] struct {
	JobType    string             `json:"job_type"`
	ArchivedAt time.Time          `json:"archived_at"`
	Execution  queue.Execution[T] `json:"execution"`
}

// DeadLetterArchive keeps a durable copy of dead-lettered executions in a
// Redis list per job type, so they survive a restart and can be exported.
// It implements queue.DeadLetterArchiver.
//
// The in-memory dead letter queue stays the source of truth for requeue;
// the archive is append-only history.
type DeadLetterArchive[T any] struct {
	client ListClient
	prefix string
	maxLen int64
	now    func() time.Time
}

// NewDeadLetterArchive creates an archive using cfg.ArchiveKeyPrefix and
// cfg.ArchiveMaxLen.
func NewDeadLetterArchive[T any](client ListClient, cfg Config) *DeadLetterArchive[T] {
	prefix := cfg.ArchiveKeyPrefix
	if prefix == "" {
		prefix = "jobkit"
	}
	return &DeadLetterArchive[T]{
		client: client,
		prefix: prefix,
		maxLen: max(cfg.ArchiveMaxLen, 0),
		now:    time.Now,
	}
}

// Key returns the list key holding jobType's archive.
func (a *DeadLetterArchive[T]) Key(jobType string) string {
	return fmt.Sprintf("%s:%s:dlq", a.prefix, jobType)
}

// Archive appends exec to the job type's list and trims the list to the
// configured length, dropping the oldest records.
func (a *DeadLetterArchive[T]) Archive(ctx context.Context, jobType string, exec queue.Execution[T]) error {
	data, err := json.Marshal(ArchivedExecution[T]{
		JobType:    jobType,
		ArchivedAt: a.now().UTC(),
		Execution:  exec,
	})
	if err != nil {
		return errors.Join(ErrArchiveWrite, err)
	}

	key := a.Key(jobType)
	if err := a.client.RPush(ctx, key, data).Err(); err != nil {
		return errors.Join(ErrArchiveWrite, err)
	}
	if a.maxLen > 0 {
		if err := a.client.LTrim(ctx, key, -a.maxLen, -1).Err(); err != nil {
			return errors.Join(ErrArchiveWrite, err)
		}
	}
	return nil
}

// Recent returns up to limit of the newest archived executions, oldest first.
// limit <= 0 returns the whole list.
func (a *DeadLetterArchive[T]) Recent(ctx context.Context, jobType string, limit int) ([]ArchivedExecution[T], error) {
	raw, err := a.RecentRaw(ctx, jobType, limit)
	if err != nil {
		return nil, err
	}

	out := make([]ArchivedExecution[T], 0, len(raw))
	for _, item := range raw {
		var rec ArchivedExecution[T]
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, errors.Join(ErrArchiveRead, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// RecentRaw is Recent without decoding, for callers that only relay the JSON.
func (a *DeadLetterArchive[T]) RecentRaw(ctx context.Context, jobType string, limit int) ([]json.RawMessage, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	items, err := a.client.LRange(ctx, a.Key(jobType), start, -1).Result()
	if err != nil {
		return nil, errors.Join(ErrArchiveRead, err)
	}

	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		out = append(out, json.RawMessage(item))
	}
	return out, nil
}

// Len returns the number of archived executions for jobType.
func (a *DeadLetterArchive[T]) Len(ctx context.Context, jobType string) (int64, error) {
	n, err := a.client.LLen(ctx, a.Key(jobType)).Result()
	if err != nil {
		return 0, errors.Join(ErrArchiveRead, err)
	}
	return n, nil
}

// Purge deletes jobType's archive.
func (a *DeadLetterArchive[T]) Purge(ctx context.Context, jobType string) error {
	if err := a.client.Del(ctx, a.Key(jobType)).Err(); err != nil {
		return errors.Join(ErrArchiveWrite, err)
	}
	return nil
}
