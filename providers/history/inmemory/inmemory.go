package inmemory

import (
	"context"
	"sync"

	"github.com/leofalp/llmwrap/providers/history"
	"github.com/leofalp/llmwrap/providers/observability"
)

// Store is a concurrency-safe in-memory record store. It uses RWMutex to
// guard access and is efficient for read-heavy workloads. Records are copied
// on the way in and out, so callers can never mutate stored state.
type Store struct {
	mu      sync.RWMutex
	records []*history.Record
}

// New returns a new, empty [Store] ready for immediate use.
func New() *Store {
	return &Store{}
}

// Ensure Store implements history.Store at compile time.
var _ history.Store = (*Store)(nil)

// Append stores a copy of record at the end of the history. A nil record is
// a no-op. When an observability span is present in ctx, an append event is
// recorded and the running record count is set as a span attribute.
func (s *Store) Append(ctx context.Context, record *history.Record) error {
	if record == nil {
		return nil
	}

	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.AddEvent(observability.EventHistoryAppend,
			observability.String(observability.AttrHistoryRecordID, record.ID),
			observability.String(observability.AttrQueryOperation, record.Op),
		)
	}

	s.mu.Lock()
	s.records = append(s.records, record.Clone())
	total := len(s.records)
	s.mu.Unlock()

	if span != nil {
		span.SetAttributes(observability.Int(observability.AttrHistoryRecords, total))
	}
	return nil
}

// List returns a copy of all records in append order.
func (s *Store) List(_ context.Context) ([]*history.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*history.Record, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record.Clone())
	}
	return out, nil
}

// Clear removes all records while retaining the underlying slice capacity.
// When an observability span is present in ctx, a clear event is recorded.
func (s *Store) Clear(ctx context.Context) error {
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventHistoryClear)
	}

	s.mu.Lock()
	s.records = s.records[:0]
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored records.
func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
