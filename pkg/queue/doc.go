// Package queue provides in-process priority job queues with per-priority
// retry policies, dead-letter routing and OpenTelemetry instrumentation.
//
// The package is organised around a few components, one set per job type:
//
//   - Queue: bounded FIFO buffers, one per Priority, strict-priority dequeue
//   - DeadLetterQueue: unbounded store for executions that ran out of attempts
//   - Processor: takes the next execution, calls the Handler, retries or dead-letters
//   - Scheduler: timer-driven trigger that drains processors on a Schedule
//
// # Architecture
//
//  1. Priority is a closed, statically ordered set: Critical > High > Default > Low > Bulk.
//     Precedence is absolute, so critical work can starve bulk work.
//  2. Config maps every Priority to a RetryPolicy and a capacity. A missing entry
//     is a construction error.
//  3. An Execution is a value. A retry enqueues a new Execution with Attempt+1;
//     an execution is held by exactly one queue at a time.
//  4. Only the Processor moves executions between a Queue and its DeadLetterQueue,
//     including the manual Requeue path, which resets the attempt count.
//  5. Enqueue never blocks: a full buffer returns false. Handler errors never
//     reach the caller of ProcessNext; they show up as metrics and DLQ depth.
//
// # Usage
//
//	type SendEmail struct {
//	    TenantID string
//	    To       string
//	}
//
//	cfg := queue.DefaultConfig()
//	metrics := queue.NewMetrics("notification", nil)
//
//	q, _ := queue.NewQueue[SendEmail]("notification", cfg, queue.WithMetrics(metrics))
//	dlq, _ := queue.NewDeadLetterQueue[SendEmail]("notification", queue.WithMetrics(metrics))
//
//	p, _ := queue.NewProcessor("notification", q, dlq, cfg,
//	    queue.HandlerFunc[SendEmail](func(ctx context.Context, m SendEmail) error {
//	        return mailer.Send(ctx, m.To)
//	    }),
//	    func(m SendEmail) string { return m.TenantID },
//	)
//
//	q.Enqueue(SendEmail{TenantID: "t1", To: "a@example.com"}, queue.PriorityHigh)
//	p.ProcessAllPending(ctx)
//
// Scheduled draining:
//
//	s := queue.NewScheduler()
//	_ = s.AddDrain("notification-dispatch", queue.EveryInterval(5*time.Second), p)
//	go s.Start(ctx)
//
// # Retries and backoff
//
// Attempts are 1-based. A 3-attempt policy gives an always-failing handler three
// invocations; the dead-lettered execution then reports Attempt 3. By default a
// failed execution is re-enqueued immediately and the backoff delay is logged
// only. WithBackoffEnforcement makes the queue hold the retry until its delay
// has passed. Wrap an error with Permanent to skip the remaining attempts.
//
// # Metrics
//
// For a job type X the package emits the gauges X.queue.depth{priority} and
// X.dlq.depth, the counters X.job.enqueued, X.job.started, X.job.completed,
// X.job.failed, X.job.retry_success (retry scheduled), X.job.recovered,
// X.job.exhausted{reason}, X.job.latency_exceeded, X.queue.overflow,
// X.dlq.added, X.dlq.removed, X.dlq.requeued, and the histograms
// X.job.duration{status} and X.job.wait_time. Processor-side instruments also
// carry a tenant attribute.
//
// # Error Handling
//
// Package-level sentinel errors (e.g. ErrIncompleteConfig, ErrQueueFull) signal
// violations of configuration invariants and can be checked with errors.Is.
package queue
