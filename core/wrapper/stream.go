package wrapper

import (
	"iter"
	"strings"
	"sync/atomic"
)

// Stream is a lazy, finite sequence of response text chunks. It is single-use:
// the first call to [Stream.Iter] or [Stream.Collect] claims the underlying
// iterator, and any later consumption attempt yields exactly one
// [ErrStreamConsumed] and no chunks. Chunk order is the emission order of the
// backend, transformed layer by layer on its way out of a decorator chain.
//
// Callers must consume the stream, either by ranging over Iter (breaking out
// early is fine) or by calling Collect. The producing side may hold resources
// (an HTTP response body, a worker goroutine) that are released only when the
// iterator completes or is abandoned via a loop break.
type Stream struct {
	iterator iter.Seq2[string, error]
	consumed atomic.Bool
}

// NewStream wraps a raw chunk iterator. The iterator is expected to yield text
// chunks with a nil error and may yield one final non-nil error to signal a
// mid-stream failure; iteration stops at the first error.
func NewStream(iterator iter.Seq2[string, error]) *Stream {
	return &Stream{iterator: iterator}
}

// NewTextStream wraps an already-complete response text as a single-chunk
// stream. It is the fallback used when a backend cannot stream natively, and
// a convenient way to build deterministic streams in tests. An empty text
// yields an empty stream.
func NewTextStream(text string) *Stream {
	return NewStream(func(yield func(string, error) bool) {
		if text == "" {
			return
		}
		yield(text, nil)
	})
}

// Iter claims the stream and returns its iterator for range-over-func loops.
//
// Example:
//
//	for chunk, err := range stream.Iter() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(chunk)
//	}
//
// A second claim returns an iterator that yields only ErrStreamConsumed.
func (s *Stream) Iter() iter.Seq2[string, error] {
	if !s.consumed.CompareAndSwap(false, true) {
		return func(yield func(string, error) bool) {
			yield("", ErrStreamConsumed)
		}
	}
	return s.iterator
}

// Collect drains the stream and returns the joined text. A mid-stream error
// terminates collection and is returned together with the text accumulated so
// far, so partial output stays observable.
func (s *Stream) Collect() (string, error) {
	var builder strings.Builder
	for chunk, err := range s.Iter() {
		if err != nil {
			return builder.String(), err
		}
		builder.WriteString(chunk)
	}
	return builder.String(), nil
}
