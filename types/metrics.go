package types

// This file defines how the cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the cache lifecycle. Engines call these
methods while holding their lock, so implementations must be fast and must not
call back into the cache.
*/
type Metrics interface {

	// Hit is called when Get finds the key.
	Hit()

	// Miss is called when Get does NOT find the key.
	Miss()

	// Eviction is called when a key is removed because the cache is full and needs space.
	Eviction()

	// Aging is called after an LFU aging pass has lowered every frequency.
	Aging()
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

It is the default, so engines never need nil checks on their metrics sink.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()      {}
func (NoopMetrics) Miss()     {}
func (NoopMetrics) Eviction() {}
func (NoopMetrics) Aging()    {}
