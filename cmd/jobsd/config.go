package main

import (
	"time"

	"github.com/villagecompute/jobkit/pkg/httpserver"
	"github.com/villagecompute/jobkit/pkg/redis"
)

// Config is the process configuration of jobsd, read from the environment
// (and .env when present).
type Config struct {
	Env      string `env:"JOBSD_ENV" envDefault:"development"`
	LogLevel string `env:"JOBSD_LOG_LEVEL"`

	// QueueConfigFile is a YAML file of per-job-type retry policies and
	// capacities. Job types it does not list use queue.DefaultConfig.
	QueueConfigFile string `env:"QUEUE_CONFIG_FILE"`
	// EnforceBackoff defers retries by the policy delay instead of
	// re-enqueueing them for the next drain.
	EnforceBackoff bool          `env:"JOBSD_ENFORCE_BACKOFF" envDefault:"false"`
	CheckInterval  time.Duration `env:"JOBSD_CHECK_INTERVAL" envDefault:"1s"`

	// Drain schedules use the queue.ParseSchedule forms: "every 5s",
	// "every 15 minutes", "hourly at :05" or "daily at 02:30".
	NotificationDrainSchedule string `env:"JOBSD_NOTIFICATION_DRAIN_SCHEDULE" envDefault:"every 5s"`
	LabelDrainSchedule        string `env:"JOBSD_LABEL_DRAIN_SCHEDULE" envDefault:"every 10s"`
	LabelBatchLimit           int    `env:"JOBSD_LABEL_BATCH_LIMIT" envDefault:"50"`

	MetricsInterval time.Duration `env:"JOBSD_METRICS_INTERVAL" envDefault:"1m"`
	MetricsDisabled bool          `env:"JOBSD_METRICS_DISABLED" envDefault:"false"`

	// DemoInterval enqueues sample jobs at this rate; 0 disables the producer.
	DemoInterval time.Duration `env:"JOBSD_DEMO_INTERVAL" envDefault:"0s"`

	ArchiveEnabled bool `env:"JOBSD_DLQ_ARCHIVE" envDefault:"false"`

	HTTP  httpserver.Config
	Redis redis.Config
}
