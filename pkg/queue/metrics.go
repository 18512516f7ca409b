package queue

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for job metrics.
const meterName = "github.com/villagecompute/jobkit/queue"

// Metric attribute keys.
const (
	attrPriority = "priority"
	attrTenant   = "tenant"
	attrStatus   = "status"
	attrReason   = "reason"
)

// Values of the reason attribute on exhausted and dead-lettered jobs.
const (
	ReasonAttemptsExhausted = "attempts_exhausted"
	ReasonPermanent         = "permanent"
	ReasonOverflow          = "overflow"
)

// Metrics holds the instruments for one job type. Every instrument name is
// prefixed with the job type, so a job type "notification" exposes
// notification.queue.depth, notification.job.completed and so on.
//
// A single Metrics value is shared by the queue, dead letter queue and
// processor of a job type. OTel instruments are safe for concurrent use.
type Metrics struct {
	jobType string
	meter   metric.Meter

	enqueued        metric.Int64Counter
	polled          metric.Int64Counter
	overflow        metric.Int64Counter
	started         metric.Int64Counter
	completed       metric.Int64Counter
	failed          metric.Int64Counter
	retryScheduled  metric.Int64Counter
	recovered       metric.Int64Counter
	exhausted       metric.Int64Counter
	latencyExceeded metric.Int64Counter
	dlqAdded        metric.Int64Counter
	dlqRemoved      metric.Int64Counter
	dlqRequeued     metric.Int64Counter
	duration        metric.Float64Histogram
	waitTime        metric.Float64Histogram
}

// NewMetrics creates the instruments for jobType using meter.
// A nil meter falls back to the global MeterProvider, which is a noop until
// the application installs one.
func NewMetrics(jobType string, meter metric.Meter) *Metrics {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	// On error the OTel API still hands back a usable instrument, so
	// construction never fails; the SDK reports the error through otel.Handle.
	counter := func(suffix, desc string) metric.Int64Counter {
		c, _ := meter.Int64Counter(jobType+suffix, metric.WithDescription(desc))
		return c
	}
	histogram := func(suffix, desc string) metric.Float64Histogram {
		h, _ := meter.Float64Histogram(jobType+suffix, metric.WithDescription(desc), metric.WithUnit("s"))
		return h
	}

	return &Metrics{
		jobType:         jobType,
		meter:           meter,
		enqueued:        counter(".job.enqueued", "Jobs admitted into the priority queue"),
		polled:          counter(".job.polled", "Records dequeued for processing"),
		overflow:        counter(".queue.overflow", "Enqueue attempts rejected by queue capacity"),
		started:         counter(".job.started", "Handler invocations started"),
		completed:       counter(".job.completed", "Jobs handled successfully"),
		failed:          counter(".job.failed", "Handler invocations that returned an error"),
		retryScheduled:  counter(".job.retry_success", "Failed jobs re-enqueued for another attempt"),
		recovered:       counter(".job.recovered", "Jobs that succeeded after at least one retry"),
		exhausted:       counter(".job.exhausted", "Jobs moved to the dead letter queue"),
		latencyExceeded: counter(".job.latency_exceeded", "Jobs dequeued after their class target latency"),
		dlqAdded:        counter(".dlq.added", "Executions added to the dead letter queue"),
		dlqRemoved:      counter(".dlq.removed", "Executions removed from the dead letter queue"),
		dlqRequeued:     counter(".dlq.requeued", "Dead-lettered executions manually re-submitted"),
		duration:        histogram(".job.duration", "Handler execution time"),
		waitTime:        histogram(".job.wait_time", "Time between enqueue and dequeue"),
	}
}

// JobType returns the job type the instruments are named after.
func (m *Metrics) JobType() string {
	return m.jobType
}

// observeQueueDepth registers the per-priority queue depth gauge.
func (m *Metrics) observeQueueDepth(depth func(Priority) int) (metric.Registration, error) {
	gauge, err := m.meter.Int64ObservableGauge(m.jobType+".queue.depth",
		metric.WithDescription("Records waiting in the priority queue"))
	if err != nil {
		return nil, err
	}
	return m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for _, p := range Priorities() {
			o.ObserveInt64(gauge, int64(depth(p)), metric.WithAttributes(priorityAttr(p)))
		}
		return nil
	}, gauge)
}

// observeDLQDepth registers the dead letter queue depth gauge.
func (m *Metrics) observeDLQDepth(depth func() int) (metric.Registration, error) {
	gauge, err := m.meter.Int64ObservableGauge(m.jobType+".dlq.depth",
		metric.WithDescription("Records held in the dead letter queue"))
	if err != nil {
		return nil, err
	}
	return m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, int64(depth()))
		return nil
	}, gauge)
}

func priorityAttr(p Priority) attribute.KeyValue {
	return attribute.String(attrPriority, p.String())
}

func jobAttrs(p Priority, tenant string, extra ...attribute.KeyValue) metric.MeasurementOption {
	attrs := make([]attribute.KeyValue, 0, 2+len(extra))
	attrs = append(attrs, priorityAttr(p), attribute.String(attrTenant, tenant))
	attrs = append(attrs, extra...)
	return metric.WithAttributes(attrs...)
}
