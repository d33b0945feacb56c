package cache

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

/*
LoadGroup deduplicates concurrent loads of the same key.

Keys are compared with ==, never by their printed form. Each key with a load in
flight holds a singleflight name taken from a counter; the name is released
when its last caller leaves and is never handed out again.

The zero value is ready to use. A LoadGroup must not be copied after first use.
*/
type LoadGroup[K comparable] struct {
	mu     sync.Mutex
	group  singleflight.Group
	flying map[K]*flight
	next   uint64
}

type flight struct {
	name string
	refs int
}

// do runs fn once per key for all callers that overlap in time.
func (g *LoadGroup[K]) do(key K, fn func() (any, error)) (any, error) {
	f := g.join(key)
	defer g.leave(key, f)

	v, err, _ := g.group.Do(f.name, fn)
	return v, err
}

func (g *LoadGroup[K]) join(key K) *flight {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.flying == nil {
		g.flying = make(map[K]*flight)
	}
	f, ok := g.flying[key]
	if !ok {
		g.next++
		f = &flight{name: strconv.FormatUint(g.next, 10)}
		g.flying[key] = f
	}
	f.refs++
	return f
}

func (g *LoadGroup[K]) leave(key K, f *flight) {
	g.mu.Lock()
	defer g.mu.Unlock()

	f.refs--
	if f.refs == 0 {
		delete(g.flying, key)
	}
}
