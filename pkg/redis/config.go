package redis

import "time"

// Config holds the connection settings and the dead letter archive limits.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // redis://:password@host:6379/0
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`

	// ArchiveKeyPrefix namespaces archive keys: {prefix}:{job type}:dlq
	ArchiveKeyPrefix string `env:"REDIS_DLQ_KEY_PREFIX" envDefault:"jobkit"`
	// ArchiveMaxLen keeps only the newest N records per job type; 0 keeps everything.
	ArchiveMaxLen int64 `env:"REDIS_DLQ_MAX_LEN" envDefault:"10000"`
}
