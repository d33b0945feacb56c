package eviction

import (
	"log/slog"

	"github.com/krisalay/policycache/logger"
	"github.com/krisalay/policycache/types"
)

// DefaultMaxAverageFrequency is the LFU aging ceiling used when none is configured.
const DefaultMaxAverageFrequency = 1_000_000

// Option configures an engine.
type Option func(*options)

type options struct {
	metrics        types.Metrics
	logger         *slog.Logger
	maxAverageFreq int
}

func defaultOptions() *options {
	return &options{
		metrics:        types.NoopMetrics{},
		logger:         logger.NewNope(),
		maxAverageFreq: DefaultMaxAverageFrequency,
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithMetrics sets the sink for hit, miss, eviction and aging events.
// A nil sink keeps the no-op default.
func WithMetrics(m types.Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithLogger sets the logger used for debug output (aging passes).
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxAverageFrequency sets the LFU aging ceiling. When the average access
// frequency of resident entries exceeds n, every frequency is reduced by n/2.
// Non-positive values keep the default. LRU ignores it.
func WithMaxAverageFrequency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxAverageFreq = n
		}
	}
}
