// Command jobsd runs the notification and barcode label job types: it drains
// their queues on a schedule, exports queue metrics and serves the admin API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/villagecompute/jobkit/pkg/config"
	"github.com/villagecompute/jobkit/pkg/httpserver"
	"github.com/villagecompute/jobkit/pkg/jobadmin"
	"github.com/villagecompute/jobkit/pkg/logger"
	"github.com/villagecompute/jobkit/pkg/queue"
	"github.com/villagecompute/jobkit/pkg/redis"
)

const serviceName = "jobsd"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, serviceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(queue.LogAttrsFromContext, jobadmin.RequestIDExtractor),
	)
	logger.SetAsDefault(log)

	var meter metric.Meter
	if !cfg.MetricsDisabled {
		m, shutdown, err := setupMetrics(serviceName, cfg.MetricsInterval)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Error("failed to flush metrics", logger.Error(err))
			}
		}()
		meter = m
	}

	configs, err := loadQueueConfigs(cfg.QueueConfigFile)
	if err != nil {
		return err
	}

	deps := jobTypeDeps{
		meter:          meter,
		log:            log,
		redisConfig:    cfg.Redis,
		enforceBackoff: cfg.EnforceBackoff,
	}
	var checks []httpserver.Check
	if cfg.ArchiveEnabled {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("dead letter archive: %w", err)
		}
		defer closeRedis(client, log)
		deps.archiveClient = client
		checks = append(checks, redis.Healthcheck(client))
	}

	notifications, err := newJobType[Notification](jobNotification, configFor(configs, jobNotification),
		handleNotification(log), func(n Notification) string { return n.Tenant }, deps)
	if err != nil {
		return err
	}
	defer notifications.Close()

	labels, err := newJobType[BarcodeLabel](jobBarcodeLabel, configFor(configs, jobBarcodeLabel),
		handleBarcodeLabel(log), func(l BarcodeLabel) string { return l.Tenant }, deps)
	if err != nil {
		return err
	}
	defer labels.Close()

	scheduler := queue.NewScheduler(
		queue.WithCheckInterval(cfg.CheckInterval),
		queue.WithSchedulerLogger(log),
	)
	notificationSchedule, labelSchedule, err := drainSchedules(cfg)
	if err != nil {
		return err
	}
	if err := errors.Join(
		scheduler.AddDrain(jobNotification, notificationSchedule, notifications.processor),
		scheduler.AddDrain(jobBarcodeLabel, labelSchedule, labels.processor,
			queue.WithBatchLimit(cfg.LabelBatchLimit)),
	); err != nil {
		return err
	}

	adminOpts := jobadmin.RouterOptions{
		JobTypes:  []jobadmin.Inspector{notifications.processor, labels.processor},
		Scheduler: scheduler,
		Logger:    log.With(logger.Component("jobadmin")),
	}
	if notifications.archive != nil && labels.archive != nil {
		adminOpts.Archives = map[string]jobadmin.ArchiveReader{
			jobNotification: notifications.archive,
			jobBarcodeLabel: labels.archive,
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(scheduler.Run(ctx))

	if !cfg.HTTP.Disabled {
		srv, err := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log.With(logger.Component("http"))))
		if err != nil {
			return err
		}
		r := chi.NewRouter()
		r.Get("/health/live", httpserver.HealthCheckHandler(log))
		r.Get("/health/ready", httpserver.HealthCheckHandler(log, checks...))
		r.Mount("/admin/jobs", jobadmin.Router(adminOpts))
		g.Go(func() error { return srv.Run(ctx, r) })
	}

	if cfg.DemoInterval > 0 {
		g.Go(func() error {
			return produceDemoJobs(ctx, cfg.DemoInterval, notifications.queue, labels.queue, log)
		})
	}

	log.Info("jobsd started",
		slog.Int("job_types", 2),
		slog.Any("drains", scheduler.ListDrains()),
		slog.Bool("archive", cfg.ArchiveEnabled))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("jobsd stopped")
	return nil
}

func loadQueueConfigs(path string) (map[string]*queue.Config, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("queue config: %w", err)
	}
	defer f.Close()

	configs, err := queue.LoadConfigs(f)
	if err != nil {
		return nil, fmt.Errorf("queue config %s: %w", path, err)
	}
	return configs, nil
}

func drainSchedules(cfg Config) (notification, label queue.Schedule, err error) {
	notification, err = queue.ParseSchedule(cfg.NotificationDrainSchedule)
	if err != nil {
		return nil, nil, fmt.Errorf("%s drain: %w", jobNotification, err)
	}
	label, err = queue.ParseSchedule(cfg.LabelDrainSchedule)
	if err != nil {
		return nil, nil, fmt.Errorf("%s drain: %w", jobBarcodeLabel, err)
	}
	return notification, label, nil
}

func closeRedis(client *goredis.Client, log *slog.Logger) {
	if err := client.Close(); err != nil {
		log.Warn("failed to close redis client", logger.Error(err))
	}
}
