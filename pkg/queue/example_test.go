package queue_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/villagecompute/jobkit/pkg/queue"
)

// Example_priorityOrder shows that higher classes are always handled first
func Example_priorityOrder() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := queue.DefaultConfig()

	q, err := queue.NewQueue[string]("notification", cfg, queue.WithQueueLogger(logger))
	if err != nil {
		panic(err)
	}
	defer q.Close()

	dlq, err := queue.NewDeadLetterQueue[string]("notification", queue.WithQueueLogger(logger))
	if err != nil {
		panic(err)
	}
	defer dlq.Close()

	handler := queue.HandlerFunc[string](func(ctx context.Context, msg string) error {
		fmt.Println(msg)
		return nil
	})

	p, err := queue.NewProcessor("notification", q, dlq, cfg, handler, nil,
		queue.WithProcessorLogger[string](logger))
	if err != nil {
		panic(err)
	}

	q.Enqueue("weekly digest", queue.PriorityBulk)
	q.Enqueue("order shipped", queue.PriorityDefault)
	q.Enqueue("password reset", queue.PriorityCritical)

	processed := p.ProcessAllPending(context.Background())
	fmt.Println("processed:", processed)

	// Output:
	// password reset
	// order shipped
	// weekly digest
	// processed: 3
}

// Example_deadLetter shows a job exhausting its retries and being requeued by an operator
func Example_deadLetter() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := queue.DefaultConfig()

	q, _ := queue.NewQueue[string]("barcode_label", cfg, queue.WithQueueLogger(logger))
	dlq, _ := queue.NewDeadLetterQueue[string]("barcode_label", queue.WithQueueLogger(logger))

	printerOnline := false
	handler := queue.HandlerFunc[string](func(ctx context.Context, sku string) error {
		if !printerOnline {
			return errors.New("printer offline")
		}
		fmt.Println("printed", sku)
		return nil
	})

	p, _ := queue.NewProcessor("barcode_label", q, dlq, cfg, handler, nil,
		queue.WithProcessorLogger[string](logger))

	q.Enqueue("SKU-1042", queue.PriorityHigh)
	p.ProcessAllPending(context.Background())

	for _, dl := range p.DeadLetters() {
		fmt.Printf("dead letter: attempt=%d error=%q\n", dl.Attempt, dl.LastError)
	}

	printerOnline = true
	n, _ := p.RequeueAll(context.Background())
	fmt.Println("requeued:", n)
	p.ProcessAllPending(context.Background())

	// Output:
	// dead letter: attempt=3 error="printer offline"
	// requeued: 1
	// printed SKU-1042
}

// ExampleLoadConfigs reads per-job-type settings from YAML
func ExampleLoadConfigs() {
	const doc = `
defaults:
  priorities:
    critical: {preset: aggressive, capacity: 1000}
    high:     {preset: default, capacity: 5000}
    default:  {preset: default, capacity: 10000}
    low:      {preset: default, capacity: 10000}
    bulk:     {preset: none, capacity: unbounded}
job_types:
  notification:
    priorities:
      critical: {max_attempts: 8, initial_delay: 250ms, max_delay: 10s, multiplier: 2, capacity: 200}
`
	configs, err := queue.LoadConfigs(strings.NewReader(doc))
	if err != nil {
		panic(err)
	}

	cfg := configs["notification"]
	fmt.Println(cfg.RetryPolicy(queue.PriorityCritical))
	fmt.Println(cfg.RetryPolicy(queue.PriorityBulk))

	// Output:
	// attempts=8 initial=250ms max=10s x2
	// attempts=1 initial=0s max=0s x1
}
