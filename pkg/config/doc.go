// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for parsing struct tags. Each configuration type
// is parsed once per prefix and cached for the life of the process.
//
// # Usage
//
//	type Config struct {
//	    HTTPAddr      string        `env:"HTTP_ADDR" envDefault:":8080"`
//	    DrainInterval time.Duration `env:"DRAIN_INTERVAL" envDefault:"1s"`
//	    RedisURL      string        `env:"REDIS_URL"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg, config.WithPrefix("JOBSD_")); err != nil {
//	    return err
//	}
//
// LoadEnv reads extra .env files before parsing; values already present in the
// process environment take precedence over file contents.
//
// # Errors
//
//   - ErrParsingConfig: the environment could not be parsed into the struct.
//   - ErrInvalidConfigType: the cache holds a different type under the same key.
//   - ErrNilPointer: a nil pointer was passed to Load or ForceReload.
//
// # Testing
//
// ResetCache clears every cached value, ForceReload re-parses a single type,
// and WithEnvironment parses from a map instead of the process environment.
package config
