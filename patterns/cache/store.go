package cache

import (
	"context"
	"time"
)

// Store is the persistence behind a [Cache]. Implementations must be safe
// for concurrent use. Values are opaque JSON documents produced by the
// wrapper; stores only move bytes.
type Store interface {
	// Get returns the value stored under key. The second return reports
	// whether the key was present; expired entries count as absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A positive ttl bounds the entry's
	// lifetime; zero stores it without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
