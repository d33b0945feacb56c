package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krisalay/policycache/eviction"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeFile(t, `
cache:
  policy: LRU
  capacity: 3
  shards: 2
benchmark:
  workers: 8
log:
  level: debug
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, eviction.LRUPolicy, cfg.Cache.PolicyType())
		require.Equal(t, 3, cfg.Cache.Capacity)
		require.Equal(t, 2, cfg.Cache.Shards)
		require.Equal(t, 8, cfg.Benchmark.Workers)
		// Untouched fields keep their defaults.
		require.Equal(t, eviction.DefaultMaxAverageFrequency, cfg.Cache.MaxAverageFrequency)
		require.Equal(t, 5000, cfg.Benchmark.ColdKeys)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "cache: [oops"))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeFile(t, "cache:\n  policy: fifo\n  capacity: -1\n"))
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.ErrorIs(t, err, eviction.ErrUnknownPolicy)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv(EnvPolicy, "lru")
		t.Setenv(EnvCapacity, "7")

		cfg, err := Load("")
		require.NoError(t, err)
		require.Equal(t, eviction.LRUPolicy, cfg.Cache.PolicyType())
		require.Equal(t, 7, cfg.Cache.Capacity)
	})

	t.Run("bad capacity in environment", func(t *testing.T) {
		t.Setenv(EnvCapacity, "many")

		_, err := Load("")
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("zero capacity is valid", func(t *testing.T) {
		t.Parallel()

		cfg := Default()
		cfg.Cache.Capacity = 0
		require.NoError(t, cfg.Validate())
	})

	t.Run("reports ratios and workers", func(t *testing.T) {
		t.Parallel()

		cfg := Default()
		cfg.Benchmark.HotRatio = 1.5
		cfg.Benchmark.Workers = 0
		err := cfg.Validate()
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.ErrorContains(t, err, "hot_ratio")
		require.ErrorContains(t, err, "workers")
	})

	t.Run("unknown log level", func(t *testing.T) {
		t.Parallel()

		cfg := Default()
		cfg.Log.Level = "chatty"
		require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := Default()
	env := map[string]string{EnvPolicy: "LFU"}
	require.NoError(t, cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
	require.Equal(t, "LFU", cfg.Cache.Policy)
	require.Equal(t, eviction.LFUPolicy, cfg.Cache.PolicyType())
}
