package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagecompute/jobkit/pkg/config"
)

type daemonDefaults struct {
	Addr          string        `env:"HTTP_ADDR" envDefault:":8080"`
	DrainInterval time.Duration `env:"DRAIN_INTERVAL" envDefault:"1s"`
	Backoff       bool          `env:"BACKOFF" envDefault:"false"`
}

type daemonSuccess struct {
	Addr          string        `env:"LOADER_HTTP_ADDR"`
	DrainInterval time.Duration `env:"LOADER_DRAIN_INTERVAL"`
	JobTypes      []string      `env:"LOADER_JOB_TYPES" envSeparator:","`
}

type cachedConfig struct {
	Value string `env:"LOADER_CACHED_VALUE"`
}

type prefixedConfig struct {
	Addr string `env:"HTTP_ADDR"`
}

type requiredConfig struct {
	RedisURL string `env:"LOADER_REDIS_URL,required"`
}

func TestLoad_Success(t *testing.T) {
	t.Setenv("LOADER_HTTP_ADDR", ":9000")
	t.Setenv("LOADER_DRAIN_INTERVAL", "250ms")
	t.Setenv("LOADER_JOB_TYPES", "notification,barcode_label")

	var cfg daemonSuccess
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.DrainInterval)
	assert.Equal(t, []string{"notification", "barcode_label"}, cfg.JobTypes)
}

func TestLoad_DefaultValues(t *testing.T) {
	var cfg daemonDefaults
	require.NoError(t, config.Load(&cfg, config.WithEnvironment(map[string]string{})))

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, time.Second, cfg.DrainInterval)
	assert.False(t, cfg.Backoff)
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("LOADER_REDIS_URL")

	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_Cached(t *testing.T) {
	t.Setenv("LOADER_CACHED_VALUE", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("LOADER_CACHED_VALUE", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value, "served from cache")

	var reloaded cachedConfig
	require.NoError(t, config.ForceReload(&reloaded))
	assert.Equal(t, "second", reloaded.Value)
}

func TestLoad_Prefix(t *testing.T) {
	env := map[string]string{
		"JOBSD_HTTP_ADDR": ":7000",
		"ADMIN_HTTP_ADDR": ":7001",
	}

	var jobsd, admin prefixedConfig
	require.NoError(t, config.Load(&jobsd, config.WithPrefix("JOBSD_"), config.WithEnvironment(env)))
	require.NoError(t, config.Load(&admin, config.WithPrefix("ADMIN_"), config.WithEnvironment(env)))

	assert.Equal(t, ":7000", jobsd.Addr)
	assert.Equal(t, ":7001", admin.Addr, "each prefix is cached separately")
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *daemonSuccess
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	assert.ErrorIs(t, config.ForceReload(cfg), config.ErrNilPointer)
}

func TestMustLoad(t *testing.T) {
	os.Unsetenv("LOADER_REDIS_URL")
	config.ResetCache()

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}
