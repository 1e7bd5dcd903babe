package inmemory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/leofalp/llmwrap/patterns/cache"
)

// entry pairs a stored value with its expiry deadline. A zero deadline
// never expires.
type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is a concurrency-safe in-memory cache store. Expired entries are
// dropped lazily on lookup, so an idle store holds its last working set
// until the keys are touched again.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
}

// Ensure Store implements cache.Store at compile time.
var _ cache.Store = (*Store)(nil)

// New returns a new, empty [Store] ready for immediate use.
func New() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Get implements [cache.Store]. Expired entries are deleted and reported
// as absent.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return bytes.Clone(e.value), true, nil
}

// Set implements [cache.Store]. The value is copied on the way in, so the
// caller may reuse its buffer.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: bytes.Clone(value)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, including any not yet swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
