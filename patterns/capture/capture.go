package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leofalp/llmwrap/core/decorator"
	"github.com/leofalp/llmwrap/core/wrapper"
	"github.com/leofalp/llmwrap/providers/history"
	"github.com/leofalp/llmwrap/providers/history/inmemory"
	"github.com/leofalp/llmwrap/providers/observability"
)

// Recorder wraps an inner [wrapper.Wrapper] and appends one [history.Record]
// per completed query to a [history.Store]. Records carry the caller's
// arguments plus the ordered output chunks; they are written only after the
// query succeeds, so a failed query leaves no trace. A streamed query is
// recorded when its stream drains cleanly: an abandoned or failed stream
// appends nothing.
type Recorder struct {
	*decorator.Decorator
	store history.Store
}

// Ensure Recorder implements the contract at compile time.
var _ wrapper.Wrapper = (*Recorder)(nil)

// Option configures a Recorder.
type Option func(*Recorder)

// WithStore replaces the default in-memory store. Use this to persist
// records, for example with the sqlitehistory store.
func WithStore(store history.Store) Option {
	return func(r *Recorder) {
		r.store = store
	}
}

// New builds a Recorder around inner. Without options, records accumulate in
// a fresh in-memory store scoped to this Recorder.
func New(inner wrapper.Wrapper, options ...Option) *Recorder {
	r := &Recorder{}
	for _, option := range options {
		option(r)
	}
	if r.store == nil {
		r.store = inmemory.New()
	}
	r.Decorator = decorator.New(inner, &recordHook{store: r.store})
	return r
}

// Store returns the record store backing this Recorder.
func (r *Recorder) Store() history.Store {
	return r.store
}

// History returns every recorded query, oldest first.
func (r *Recorder) History(ctx context.Context) ([]*history.Record, error) {
	return r.store.List(ctx)
}

// recordHook dispatches the caller's arguments unchanged and appends the
// completed record during Finalize.
type recordHook struct {
	store history.Store
}

func (h *recordHook) Prepare(_ context.Context, inv *decorator.Invocation) (*decorator.Request, error) {
	return &decorator.Request{Prompt: inv.Prompt(), API: inv.API()}, nil
}

// Finalize builds the record from the dispatch result. For synchronous
// operations a failed append fails the query, on the grounds that the caller
// asked for recording and did not get it. For streams the chunks have already
// been delivered by the time the append runs, so a failure there is recorded
// on the ambient span instead of surfacing to the consumer.
func (h *recordHook) Finalize(ctx context.Context, inv *decorator.Invocation, res *decorator.Result) (*decorator.Result, error) {
	record := history.NewRecord(inv.Op())
	record.BlockType = inv.BlockType()
	record.Prompt = inv.Prompt()
	record.API = inv.API()

	switch inv.Op() {
	case wrapper.OpStream:
		return &decorator.Result{
			Op:     res.Op,
			Stream: h.captureStream(ctx, record, res.Stream),
		}, nil

	case wrapper.OpObject:
		encoded, err := json.Marshal(res.Object)
		if err != nil {
			return nil, fmt.Errorf("recording decoded object: %w", err)
		}
		record.Text = string(encoded)
		record.Output = []string{record.Text}

	default:
		record.Text = res.Text
		record.Output = []string{res.Text}
		record.Tokens = res.Tokens
	}

	if err := h.store.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("recording query: %w", err)
	}
	return nil, nil
}

// captureStream wraps the dispatched stream so chunks are accumulated as
// they pass through. The record is appended only when the backend iterator
// finishes without an error and without the consumer breaking out early.
func (h *recordHook) captureStream(ctx context.Context, record *history.Record, stream *wrapper.Stream) *wrapper.Stream {
	return wrapper.NewStream(func(yield func(string, error) bool) {
		var chunks []string
		for chunk, err := range stream.Iter() {
			if err != nil {
				yield(chunk, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
			chunks = append(chunks, chunk)
		}

		record.Output = chunks
		record.Text = strings.Join(chunks, "")
		if err := h.store.Append(ctx, record); err != nil {
			if span := observability.SpanFromContext(ctx); span != nil {
				span.RecordError(fmt.Errorf("recording streamed query: %w", err))
			}
		}
	})
}
