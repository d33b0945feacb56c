// Package config loads cache and benchmark settings from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/krisalay/policycache/eviction"
	"github.com/krisalay/policycache/logger"
	"github.com/krisalay/policycache/types"
)

// ErrInvalidConfig is joined with every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Environment variables that override file values.
const (
	EnvPolicy   = "POLICYCACHE_POLICY"
	EnvCapacity = "POLICYCACHE_CAPACITY"
)

// Config is the root of the YAML document.
type Config struct {
	Cache     CacheConfig     `yaml:"cache"`
	Benchmark BenchmarkConfig `yaml:"benchmark"`
	Log       LogConfig       `yaml:"log"`
}

// CacheConfig describes how to build a cache.
type CacheConfig struct {
	Policy              string `yaml:"policy"`
	Capacity            int    `yaml:"capacity"`
	Shards              int    `yaml:"shards"`
	MaxAverageFrequency int    `yaml:"max_average_frequency"`
}

// BenchmarkConfig drives the hot/cold hit-rate benchmark.
type BenchmarkConfig struct {
	HotKeys    int     `yaml:"hot_keys"`
	ColdKeys   int     `yaml:"cold_keys"`
	Operations int     `yaml:"operations"`
	HotRatio   float64 `yaml:"hot_ratio"`
	PutRatio   float64 `yaml:"put_ratio"`
	Workers    int     `yaml:"workers"`
	Seed       int64   `yaml:"seed"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Policy:              string(eviction.LFUPolicy),
			Capacity:            20,
			Shards:              1,
			MaxAverageFrequency: eviction.DefaultMaxAverageFrequency,
		},
		Benchmark: BenchmarkConfig{
			HotKeys:    20,
			ColdKeys:   5000,
			Operations: 500_000,
			HotRatio:   0.7,
			PutRatio:   0.3,
			Workers:    4,
			Seed:       1,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path on top of Default, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Join(ErrInvalidConfig, fmt.Errorf("decoding %q: %w", path, err))
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPolicy); ok && v != "" {
		c.Cache.Policy = v
	}
	if v, ok := lookup(EnvCapacity); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Join(ErrInvalidConfig, fmt.Errorf("%s: %w", EnvCapacity, err))
		}
		c.Cache.Capacity = n
	}
	return nil
}

// Validate reports every problem at once, each joined with ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error

	if _, err := eviction.ParsePolicyType(c.Cache.Policy); err != nil {
		errs = append(errs, err)
	}
	if c.Cache.Capacity < 0 {
		errs = append(errs, fmt.Errorf("cache.capacity must be >= 0, got %d", c.Cache.Capacity))
	}
	if c.Cache.Shards < 1 {
		errs = append(errs, fmt.Errorf("cache.shards must be >= 1, got %d", c.Cache.Shards))
	}
	if c.Cache.MaxAverageFrequency <= 0 {
		errs = append(errs, fmt.Errorf("cache.max_average_frequency must be > 0, got %d", c.Cache.MaxAverageFrequency))
	}

	b := c.Benchmark
	if b.HotKeys < 0 || b.ColdKeys < 0 || b.HotKeys+b.ColdKeys == 0 {
		errs = append(errs, fmt.Errorf("benchmark needs a positive key space, got hot=%d cold=%d", b.HotKeys, b.ColdKeys))
	}
	if b.Operations < 0 {
		errs = append(errs, fmt.Errorf("benchmark.operations must be >= 0, got %d", b.Operations))
	}
	if b.HotRatio < 0 || b.HotRatio > 1 {
		errs = append(errs, fmt.Errorf("benchmark.hot_ratio must be in [0,1], got %v", b.HotRatio))
	}
	if b.PutRatio < 0 || b.PutRatio > 1 {
		errs = append(errs, fmt.Errorf("benchmark.put_ratio must be in [0,1], got %v", b.PutRatio))
	}
	if b.Workers < 1 {
		errs = append(errs, fmt.Errorf("benchmark.workers must be >= 1, got %d", b.Workers))
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
}

// PolicyType returns the parsed cache policy. Call after Validate.
func (c CacheConfig) PolicyType() eviction.PolicyType {
	t, _ := eviction.ParsePolicyType(c.Policy)
	return t
}

// Options translates the cache section into engine options.
func (c CacheConfig) Options(m types.Metrics, log *slog.Logger) []eviction.Option {
	return []eviction.Option{
		eviction.WithMaxAverageFrequency(c.MaxAverageFrequency),
		eviction.WithMetrics(m),
		eviction.WithLogger(log),
	}
}

// SlogLevel returns the parsed log level, info if unparsable.
func (c LogConfig) SlogLevel() slog.Level {
	l, _ := logger.ParseLevel(c.Level)
	return l
}
