// Package metrics records cache events in a go-metrics registry.
package metrics

import (
	"io"
	"time"

	gometrics "github.com/rcrowley/go-metrics"

	"github.com/krisalay/policycache/types"
)

// Counter names registered by Registry.
const (
	HitCounter      = "cache.hit"
	MissCounter     = "cache.miss"
	EvictionCounter = "cache.eviction"
	AgingCounter    = "cache.aging"
)

// Registry implements types.Metrics on top of go-metrics counters.
// Counters are atomic, so one Registry can be shared by several engines
// (for example all shards of a ShardedCache).
type Registry struct {
	registry  gometrics.Registry
	hits      gometrics.Counter
	misses    gometrics.Counter
	evictions gometrics.Counter
	agings    gometrics.Counter
}

// NewRegistry creates a Registry with its own go-metrics registry.
func NewRegistry() *Registry {
	return Wrap(gometrics.NewRegistry())
}

// Wrap registers the cache counters in r, reusing any that already exist.
func Wrap(r gometrics.Registry) *Registry {
	return &Registry{
		registry:  r,
		hits:      gometrics.GetOrRegisterCounter(HitCounter, r),
		misses:    gometrics.GetOrRegisterCounter(MissCounter, r),
		evictions: gometrics.GetOrRegisterCounter(EvictionCounter, r),
		agings:    gometrics.GetOrRegisterCounter(AgingCounter, r),
	}
}

func (r *Registry) Hit()      { r.hits.Inc(1) }
func (r *Registry) Miss()     { r.misses.Inc(1) }
func (r *Registry) Eviction() { r.evictions.Inc(1) }
func (r *Registry) Aging()    { r.agings.Inc(1) }

// Timer returns the named timer, creating it on first use.
func (r *Registry) Timer(name string) gometrics.Timer {
	return gometrics.GetOrRegisterTimer(name, r.registry)
}

// Underlying exposes the go-metrics registry.
func (r *Registry) Underlying() gometrics.Registry { return r.registry }

// Snapshot is a point-in-time copy of the cache counters.
type Snapshot struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Agings    int64
}

// Snapshot reads all counters.
func (r *Registry) Snapshot() Snapshot {
	return Snapshot{
		Hits:      r.hits.Count(),
		Misses:    r.misses.Count(),
		Evictions: r.evictions.Count(),
		Agings:    r.agings.Count(),
	}
}

// HitRate is hits / (hits + misses), or 0 before any Get.
func (s Snapshot) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// HitRate is a shortcut for Snapshot().HitRate().
func (r *Registry) HitRate() float64 { return r.Snapshot().HitRate() }

// Reset zeroes the cache counters.
func (r *Registry) Reset() {
	r.hits.Clear()
	r.misses.Clear()
	r.evictions.Clear()
	r.agings.Clear()
}

// WriteOnce dumps every metric in the registry to w.
func (r *Registry) WriteOnce(w io.Writer) {
	gometrics.WriteOnce(r.registry, w)
}

// Time runs fn and records its duration in the named timer.
func (r *Registry) Time(name string, fn func()) {
	start := time.Now()
	fn()
	r.Timer(name).UpdateSince(start)
}

var _ types.Metrics = (*Registry)(nil)
