package queue_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagecompute/jobkit/pkg/logger"
	"github.com/villagecompute/jobkit/pkg/queue"
)

func TestJobInfoFromContext(t *testing.T) {
	t.Parallel()

	_, ok := queue.JobInfoFromContext(context.Background())
	assert.False(t, ok)

	_, ok = queue.LogAttrsFromContext(context.Background())
	assert.False(t, ok)
}

func TestProcessor_HandlerContextCarriesJob(t *testing.T) {
	t.Parallel()

	f := newFixture(t, uniformConfig(t, threeAttempts(), 0))

	var seen []queue.JobInfo
	p := f.processor(t, queue.HandlerFunc[job](func(ctx context.Context, j job) error {
		info, ok := queue.JobInfoFromContext(ctx)
		require.True(t, ok)
		seen = append(seen, info)
		if len(seen) == 1 {
			return errBoom
		}
		return nil
	}))

	require.True(t, f.q.Enqueue(job{ID: 1, Tenant: "acme"}, queue.PriorityHigh))
	p.ProcessAllPending(context.Background())

	require.Len(t, seen, 2)
	assert.Equal(t, testJobType, seen[0].JobType)
	assert.Equal(t, queue.PriorityHigh, seen[0].Priority)
	assert.Equal(t, "acme", seen[0].Tenant)
	assert.Equal(t, 1, seen[0].Attempt)
	assert.Equal(t, 2, seen[1].Attempt)
	assert.Equal(t, seen[0].ExecutionID, seen[1].ExecutionID)
}

func TestLogAttrsFromContext(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithContextExtractors(queue.LogAttrsFromContext),
	)

	f := newFixture(t, queue.DefaultConfig())
	p := f.processor(t, queue.HandlerFunc[job](func(ctx context.Context, j job) error {
		log.InfoContext(ctx, "sending notification")
		return nil
	}))

	require.True(t, f.q.Enqueue(job{ID: 1, Tenant: "globex"}, queue.PriorityLow))
	require.True(t, p.ProcessNext(context.Background()))

	var entry struct {
		Msg string `json:"msg"`
		Job struct {
			JobType     string `json:"job_type"`
			ExecutionID string `json:"execution_id"`
			Priority    string `json:"priority"`
			Attempt     int    `json:"attempt"`
			TenantID    string `json:"tenant_id"`
		} `json:"job"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sending notification", entry.Msg)
	assert.Equal(t, testJobType, entry.Job.JobType)
	assert.NotEmpty(t, entry.Job.ExecutionID)
	assert.Equal(t, "low", entry.Job.Priority)
	assert.Equal(t, 1, entry.Job.Attempt)
	assert.Equal(t, "globex", entry.Job.TenantID)
}
