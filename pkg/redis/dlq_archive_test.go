package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagecompute/jobkit/pkg/queue"
)

// newTestServer starts an in-process Redis server and a client connected to it.
func newTestServer(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func newTestArchive(t *testing.T, cfg Config) (*miniredis.Miniredis, *DeadLetterArchive[label]) {
	t.Helper()

	srv, client := newTestServer(t)
	return srv, NewDeadLetterArchive[label](client, cfg)
}

type label struct {
	SKU    string `json:"sku"`
	Tenant string `json:"tenant"`
}

func deadLabel(sku string) queue.Execution[label] {
	exec := queue.NewExecution(label{SKU: sku, Tenant: "acme"}, queue.PriorityHigh)
	exec.Attempt = 3
	exec.LastError = "printer offline"
	return exec
}

func TestDeadLetterArchive_Key(t *testing.T) {
	t.Parallel()

	a := NewDeadLetterArchive[label](nil, Config{})
	assert.Equal(t, "jobkit:barcode_label:dlq", a.Key("barcode_label"))

	a = NewDeadLetterArchive[label](nil, Config{ArchiveKeyPrefix: "warehouse"})
	assert.Equal(t, "warehouse:notification:dlq", a.Key("notification"))
}

func TestDeadLetterArchive_ArchiveAndRecent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv, a := newTestArchive(t, Config{})
	archivedAt := time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)
	a.now = func() time.Time { return archivedAt }

	first, second := deadLabel("SKU-1"), deadLabel("SKU-2")
	require.NoError(t, a.Archive(ctx, "barcode_label", first))
	require.NoError(t, a.Archive(ctx, "barcode_label", second))

	n, err := a.Len(ctx, "barcode_label")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, srv.Exists("jobkit:barcode_label:dlq"))

	recs, err := a.Recent(ctx, "barcode_label", 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "barcode_label", recs[0].JobType)
	assert.Equal(t, archivedAt, recs[0].ArchivedAt)
	assert.Equal(t, first.ID, recs[0].Execution.ID)
	assert.Equal(t, "SKU-1", recs[0].Execution.Payload.SKU)
	assert.Equal(t, 3, recs[0].Execution.Attempt)
	assert.Equal(t, "printer offline", recs[0].Execution.LastError)
	assert.Equal(t, queue.PriorityHigh, recs[0].Execution.Priority)
	assert.Equal(t, second.ID, recs[1].Execution.ID)

	latest, err := a.Recent(ctx, "barcode_label", 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, second.ID, latest[0].Execution.ID)

	all, err := a.Recent(ctx, "barcode_label", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2, "limit above the list length returns the whole list")

	other, err := a.Recent(ctx, "notification", 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestDeadLetterArchive_MaxLen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv, a := newTestArchive(t, Config{ArchiveMaxLen: 3})

	for _, sku := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, a.Archive(ctx, "barcode_label", deadLabel(sku)))
	}

	recs, err := a.Recent(ctx, "barcode_label", 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "C", recs[0].Execution.Payload.SKU)
	assert.Equal(t, "E", recs[2].Execution.Payload.SKU)

	stored, err := srv.List("jobkit:barcode_label:dlq")
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestDeadLetterArchive_RecentRaw(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, a := newTestArchive(t, Config{})
	require.NoError(t, a.Archive(ctx, "barcode_label", deadLabel("SKU-9")))

	raw, err := a.RecentRaw(ctx, "barcode_label", 10)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Contains(t, string(raw[0]), `"sku":"SKU-9"`)
	assert.Contains(t, string(raw[0]), `"priority":"high"`)
}

func TestDeadLetterArchive_Purge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv, a := newTestArchive(t, Config{})
	require.NoError(t, a.Archive(ctx, "barcode_label", deadLabel("SKU-1")))

	require.NoError(t, a.Purge(ctx, "barcode_label"))
	assert.False(t, srv.Exists("jobkit:barcode_label:dlq"))
	n, err := a.Len(ctx, "barcode_label")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeadLetterArchive_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv, a := newTestArchive(t, Config{})
	srv.SetError("LOADING Redis is loading the dataset in memory")

	err := a.Archive(ctx, "barcode_label", deadLabel("SKU-1"))
	assert.ErrorIs(t, err, ErrArchiveWrite)

	_, err = a.Recent(ctx, "barcode_label", 0)
	assert.ErrorIs(t, err, ErrArchiveRead)

	_, err = a.Len(ctx, "barcode_label")
	assert.ErrorIs(t, err, ErrArchiveRead)

	assert.ErrorIs(t, a.Purge(ctx, "barcode_label"), ErrArchiveWrite)
}

func TestDeadLetterArchive_CorruptRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv, a := newTestArchive(t, Config{})
	_, err := srv.RPush("jobkit:barcode_label:dlq", "not json")
	require.NoError(t, err)

	_, err = a.Recent(ctx, "barcode_label", 0)
	assert.ErrorIs(t, err, ErrArchiveRead)
}

func TestDeadLetterArchive_WiredToProcessor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := queue.DefaultConfig()
	_, a := newTestArchive(t, Config{})

	q, err := queue.NewQueue[label]("barcode_label", cfg)
	require.NoError(t, err)
	dlq, err := queue.NewDeadLetterQueue[label]("barcode_label")
	require.NoError(t, err)

	p, err := queue.NewProcessor("barcode_label", q, dlq, cfg,
		queue.HandlerFunc[label](func(context.Context, label) error {
			return queue.Permanent(errors.New("unknown sku"))
		}),
		func(l label) string { return l.Tenant },
		queue.WithDeadLetterArchive[label](a))
	require.NoError(t, err)

	require.True(t, q.Enqueue(label{SKU: "SKU-404", Tenant: "acme"}, queue.PriorityDefault))
	p.ProcessAllPending(ctx)

	recs, err := a.Recent(ctx, "barcode_label", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "SKU-404", recs[0].Execution.Payload.SKU)
	assert.Equal(t, "unknown sku", recs[0].Execution.LastError)
	assert.Equal(t, 1, dlq.Depth())
}
