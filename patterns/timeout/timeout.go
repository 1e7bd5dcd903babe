package timeout

import (
	"context"
	"time"

	"github.com/leofalp/llmwrap/core/wrapper"
)

// Timeout wraps an inner [wrapper.Wrapper] and enforces a per-operation
// deadline.
//
// Synchronous operations (QueryResponse, QueryObject, QueryBlock) run under
// context.WithTimeout with the cancel released as soon as the call returns.
//
// For QueryStream the deadline wraps the context before the stream is
// established, but the cancel function is not released until the stream is
// fully consumed, fails mid-flight, or is abandoned by the consumer. The
// timeout therefore governs the complete lifetime of the stream, not just
// the time to the first chunk.
//
// If the caller's context already carries a shorter deadline, the shorter
// one wins as per normal context semantics.
type Timeout struct {
	inner   wrapper.Wrapper
	timeout time.Duration
}

// Ensure Timeout implements the contract at compile time.
var _ wrapper.Wrapper = (*Timeout)(nil)

// New builds a deadline wrapper around inner.
func New(inner wrapper.Wrapper, timeout time.Duration) *Timeout {
	return &Timeout{inner: inner, timeout: timeout}
}

// QueryResponse implements [wrapper.Wrapper].
func (t *Timeout) QueryResponse(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	return t.inner.QueryResponse(ctx, prompt, api)
}

// QueryStream implements [wrapper.Wrapper]. The returned stream owns the
// deadline's cancel function and releases it when consumption ends.
func (t *Timeout) QueryStream(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (*wrapper.Stream, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)

	stream, err := t.inner.QueryStream(ctx, prompt, api)
	if err != nil {
		// Pre-stream error, release the deadline immediately.
		cancel()
		return nil, err
	}

	return wrapWithCancel(stream, cancel), nil
}

// QueryObject implements [wrapper.Wrapper].
func (t *Timeout) QueryObject(ctx context.Context, target any, prompt wrapper.PromptArgs, api wrapper.ApiArgs) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	return t.inner.QueryObject(ctx, target, prompt, api)
}

// QueryBlock implements [wrapper.Wrapper].
func (t *Timeout) QueryBlock(ctx context.Context, blockType string, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	return t.inner.QueryBlock(ctx, blockType, prompt, api)
}

// wrapWithCancel returns a stream whose iterator calls cancel once the
// underlying stream finishes, errors, or the consumer breaks out of the
// loop.
func wrapWithCancel(stream *wrapper.Stream, cancel context.CancelFunc) *wrapper.Stream {
	return wrapper.NewStream(func(yield func(string, error) bool) {
		defer cancel()

		for chunk, err := range stream.Iter() {
			if !yield(chunk, err) {
				// The consumer broke out of the range loop early.
				return
			}
			if err != nil {
				return
			}
		}
	})
}
