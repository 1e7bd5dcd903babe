// Package cache answers repeated queries without a backend round trip. The
// [Cache] keys each query by an xxhash of its canonical JSON identity, the
// operation, block type, prompt arguments and api arguments, and stores the
// answer as a small JSON envelope in a pluggable [Store]. Two stores ship
// with it: inmemory (mutex-guarded map with TTL) and rediscache (Redis via
// go-redis). Streams always pass through uncached.
//
//	cached := cache.New(client, inmemory.New(), cache.WithTTL(10*time.Minute))
//	answer, _, err := cached.QueryResponse(ctx, prompt, api)
package cache
