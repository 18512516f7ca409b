package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/metric"

	"github.com/villagecompute/jobkit/pkg/logger"
	"github.com/villagecompute/jobkit/pkg/queue"
	"github.com/villagecompute/jobkit/pkg/redis"
)

const (
	jobNotification = "notification"
	jobBarcodeLabel = "barcode_label"
)

// Notification asks for a templated message to be delivered to a user.
type Notification struct {
	Tenant    string `json:"tenant"`
	Recipient string `json:"recipient"`
	Channel   string `json:"channel"`
	Template  string `json:"template"`
}

// BarcodeLabel asks for copies of a product label to be rendered and printed.
type BarcodeLabel struct {
	Tenant  string `json:"tenant"`
	SKU     string `json:"sku"`
	Printer string `json:"printer"`
	Copies  int    `json:"copies"`
}

var (
	errUnsupportedChannel = errors.New("unsupported notification channel")
	errMissingSKU         = errors.New("label has no sku")
	errPrinterOffline     = errors.New("printer offline")
)

var notificationChannels = []string{"email", "push", "sms"}

func handleNotification(log *slog.Logger) queue.HandlerFunc[Notification] {
	return func(ctx context.Context, n Notification) error {
		if !slices.Contains(notificationChannels, n.Channel) {
			return queue.Permanent(fmt.Errorf("%w: %q", errUnsupportedChannel, n.Channel))
		}
		log.InfoContext(ctx, "notification sent",
			slog.String("channel", n.Channel),
			slog.String("template", n.Template))
		return nil
	}
}

func handleBarcodeLabel(log *slog.Logger) queue.HandlerFunc[BarcodeLabel] {
	return func(ctx context.Context, l BarcodeLabel) error {
		if l.SKU == "" {
			return queue.Permanent(errMissingSKU)
		}
		if l.Printer == "" {
			// Transient: the label is retried until a printer is assigned.
			return errPrinterOffline
		}
		log.InfoContext(ctx, "barcode label printed",
			slog.String("sku", l.SKU),
			slog.String("printer", l.Printer),
			slog.Int("copies", max(l.Copies, 1)))
		return nil
	}
}

// jobType bundles the components of one job type.
type jobType[T any] struct {
	queue     *queue.Queue[T]
	dlq       *queue.DeadLetterQueue[T]
	processor *queue.Processor[T]
	archive   *redis.DeadLetterArchive[T]
}

type jobTypeDeps struct {
	meter          metric.Meter
	log            *slog.Logger
	archiveClient  redis.ListClient
	redisConfig    redis.Config
	enforceBackoff bool
}

func newJobType[T any](
	name string,
	cfg *queue.Config,
	handler queue.Handler[T],
	tenantOf queue.TenantExtractor[T],
	deps jobTypeDeps,
) (*jobType[T], error) {
	log := deps.log.With(logger.JobType(name))
	metrics := queue.NewMetrics(name, deps.meter)

	q, err := queue.NewQueue[T](name, cfg,
		queue.WithMetrics(metrics),
		queue.WithQueueLogger(log))
	if err != nil {
		return nil, fmt.Errorf("%s queue: %w", name, err)
	}
	dlq, err := queue.NewDeadLetterQueue[T](name,
		queue.WithMetrics(metrics),
		queue.WithQueueLogger(log))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%s dead letter queue: %w", name, err), q.Close())
	}

	jt := &jobType[T]{queue: q, dlq: dlq}
	opts := []queue.ProcessorOption[T]{queue.WithProcessorLogger[T](log)}
	if deps.enforceBackoff {
		opts = append(opts, queue.WithBackoffEnforcement[T]())
	}
	if deps.archiveClient != nil {
		jt.archive = redis.NewDeadLetterArchive[T](deps.archiveClient, deps.redisConfig)
		opts = append(opts, queue.WithDeadLetterArchive[T](jt.archive))
	}

	jt.processor, err = queue.NewProcessor(name, q, dlq, cfg, handler, tenantOf, opts...)
	if err != nil {
		return nil, errors.Join(err, jt.Close())
	}
	return jt, nil
}

// Close unregisters the depth gauges of the job type.
func (jt *jobType[T]) Close() error {
	return errors.Join(jt.queue.Close(), jt.dlq.Close())
}

// configFor returns the configuration of name from configs, or the stock one.
func configFor(configs map[string]*queue.Config, name string) *queue.Config {
	if cfg, ok := configs[name]; ok {
		return cfg
	}
	return queue.DefaultConfig()
}
