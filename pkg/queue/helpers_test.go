package queue_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/villagecompute/jobkit/pkg/queue"
)

const testJobType = "test"

// job is the payload used across the tests
type job struct {
	ID     int
	Tenant string
}

func tenantOf(j job) string { return j.Tenant }

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeClock is a manually advanced clock shared by queue and processor
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// uniformConfig gives every priority the same policy and capacity (0 = unbounded)
func uniformConfig(t *testing.T, policy queue.RetryPolicy, capacity int) *queue.Config {
	t.Helper()

	var opts []queue.ConfigOption
	for _, p := range queue.Priorities() {
		opts = append(opts, queue.WithRetryPolicy(p, policy))
		if capacity > 0 {
			opts = append(opts, queue.WithCapacity(p, capacity))
		} else {
			opts = append(opts, queue.WithUnboundedCapacity(p))
		}
	}
	cfg, err := queue.NewConfig(opts...)
	require.NoError(t, err)
	return cfg
}

// fixture bundles the per-job-type components with an in-memory metric reader
type fixture struct {
	cfg     *queue.Config
	reader  *sdkmetric.ManualReader
	metrics *queue.Metrics
	clock   *fakeClock
	q       *queue.Queue[job]
	dlq     *queue.DeadLetterQueue[job]
}

func newFixture(t *testing.T, cfg *queue.Config) *fixture {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics := queue.NewMetrics(testJobType, mp.Meter("test"))
	clock := newFakeClock()

	q, err := queue.NewQueue[job](testJobType, cfg,
		queue.WithMetrics(metrics),
		queue.WithQueueLogger(discardLogger()),
		queue.WithClock(clock.Now))
	require.NoError(t, err)

	dlq, err := queue.NewDeadLetterQueue[job](testJobType,
		queue.WithMetrics(metrics),
		queue.WithQueueLogger(discardLogger()))
	require.NoError(t, err)

	return &fixture{cfg: cfg, reader: reader, metrics: metrics, clock: clock, q: q, dlq: dlq}
}

func (f *fixture) processor(t *testing.T, h queue.Handler[job], opts ...queue.ProcessorOption[job]) *queue.Processor[job] {
	t.Helper()

	opts = append([]queue.ProcessorOption[job]{
		queue.WithProcessorLogger[job](discardLogger()),
		queue.WithProcessorClock[job](f.clock.Now),
	}, opts...)

	p, err := queue.NewProcessor(testJobType, f.q, f.dlq, f.cfg, h, tenantOf, opts...)
	require.NoError(t, err)
	return p
}

func (f *fixture) collect(t *testing.T) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))
	return rm
}

// counter sums the data points of an Int64 counter whose attributes include attrs.
// A metric that was never recorded reads as zero.
func (f *fixture) counter(t *testing.T, name string, attrs map[string]string) int64 {
	t.Helper()

	m := findMetric(f.collect(t), name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", name)

	var total int64
	for _, dp := range sum.DataPoints {
		if hasAttrs(dp.Attributes, attrs) {
			total += dp.Value
		}
	}
	return total
}

// gauge returns the Int64 gauge value whose attributes include attrs
func (f *fixture) gauge(t *testing.T, name string, attrs map[string]string) int64 {
	t.Helper()

	m := findMetric(f.collect(t), name)
	require.NotNil(t, m, "%s not found", name)
	g, ok := m.Data.(metricdata.Gauge[int64])
	require.True(t, ok, "%s is not an int64 gauge", name)

	for _, dp := range g.DataPoints {
		if hasAttrs(dp.Attributes, attrs) {
			return dp.Value
		}
	}
	t.Fatalf("%s has no data point for %v", name, attrs)
	return 0
}

// histogramCount returns the number of recordings of a float64 histogram
func (f *fixture) histogramCount(t *testing.T, name string, attrs map[string]string) uint64 {
	t.Helper()

	m := findMetric(f.collect(t), name)
	if m == nil {
		return 0
	}
	h, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "%s is not a float64 histogram", name)

	var count uint64
	for _, dp := range h.DataPoints {
		if hasAttrs(dp.Attributes, attrs) {
			count += dp.Count
		}
	}
	return count
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func hasAttrs(set attribute.Set, want map[string]string) bool {
	for k, v := range want {
		got, ok := set.Value(attribute.Key(k))
		if !ok || got.AsString() != v {
			return false
		}
	}
	return true
}

// countingHandler records invocations and fails the first failFirst of them
type countingHandler struct {
	mu        sync.Mutex
	calls     []job
	failFirst int
	err       error
}

func (h *countingHandler) Handle(_ context.Context, j job) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls = append(h.calls, j)
	if len(h.calls) <= h.failFirst {
		return h.err
	}
	return nil
}

func (h *countingHandler) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}
