package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cache keeps one parsed copy per configuration type and prefix
type cache struct {
	mu     sync.Mutex
	values map[string]any
}

var (
	globalCache = &cache{values: make(map[string]any)}

	defaultEnvLoaded sync.Once
)

// LoadOption adjusts how a struct is parsed from the environment
type LoadOption func(*env.Options)

// WithPrefix parses variables with a common prefix, so a field tagged
// `env:"ADDR"` reads JOBSD_ADDR under WithPrefix("JOBSD_").
func WithPrefix(prefix string) LoadOption {
	return func(o *env.Options) {
		o.Prefix = prefix
	}
}

// WithEnvironment parses from a fixed map instead of the process environment.
// Mostly useful in tests.
func WithEnvironment(vars map[string]string) LoadOption {
	return func(o *env.Options) {
		o.Environment = vars
	}
}

// Load parses environment variables into v using its `env` field tags.
// The default .env file is read once, if present. Each configuration type is
// parsed only once per prefix; later calls get the cached copy.
//
// Example:
//
//	type RedisConfig struct {
//		ConnectionURL string `env:"REDIS_URL,required"`
//	}
//
//	var cfg RedisConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T, opts ...LoadOption) error {
	defaultEnvLoaded.Do(func() {
		// A missing .env file is fine
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	options := parseOptions(opts)
	key := cacheKey[T](options.Prefix)

	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()

	if cached, ok := globalCache.values[key]; ok {
		typed, ok := cached.(T)
		if !ok {
			return ErrInvalidConfigType
		}
		*v = typed
		return nil
	}

	var parsed T
	if err := env.ParseWithOptions(&parsed, options); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	globalCache.values[key] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T, opts ...LoadOption) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// ForceReload drops the cached copy of T and parses it again.
func ForceReload[T any](v *T, opts ...LoadOption) error {
	if v == nil {
		return ErrNilPointer
	}
	options := parseOptions(opts)

	globalCache.mu.Lock()
	delete(globalCache.values, cacheKey[T](options.Prefix))
	globalCache.mu.Unlock()

	return Load(v, opts...)
}

// LoadEnv reads the given .env files into the process environment, or the
// default .env when called without arguments. Values already set in the
// environment are not overridden; among files, later ones win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		return godotenv.Load()
	}
	merged := make(map[string]string)
	for _, f := range files {
		vars, err := godotenv.Read(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		for k, val := range vars {
			merged[k] = val
		}
	}
	return setUnset(merged)
}

// MustLoadEnv is LoadEnv that panics on error.
func MustLoadEnv(files ...string) {
	if err := LoadEnv(files...); err != nil {
		panic(fmt.Sprintf("failed to load env files: %v", err))
	}
}

// ResetCache forgets every parsed configuration.
func ResetCache() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	clear(globalCache.values)
}

func parseOptions(opts []LoadOption) env.Options {
	var o env.Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// cacheKey identifies T and prefix
func cacheKey[T any](prefix string) string {
	return prefix + "|" + reflect.TypeFor[T]().String()
}

// setUnset exports vars that are not already present in the environment
func setUnset(vars map[string]string) error {
	for k, v := range vars {
		if _, exists := os.LookupEnv(k); exists {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}
