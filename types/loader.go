package types

import "context"

// Loader is the contract between the cache and whatever produces values on a miss.
type Loader[K comparable, V any] interface {

	/*
		Load is called when the cache misses.
		1. Cache checks memory → key not found
		2. Cache calls Load(key), once per key even under concurrent misses
		3. Loader fetches from DB/API/computation
		4. Cache stores the result in memory
		5. Cache returns the value

		An error is returned to the caller and nothing is cached.
	*/
	Load(ctx context.Context, key K) (V, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Load calls f(ctx, key).
func (f LoaderFunc[K, V]) Load(ctx context.Context, key K) (V, error) {
	return f(ctx, key)
}
