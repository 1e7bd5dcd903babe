package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/leofalp/llmwrap/core/wrapper"
	"github.com/leofalp/llmwrap/providers/observability"
)

// Config holds the tuning parameters for the retry wrapper. Zero values are
// replaced with the defaults documented below when [New] is called.
type Config struct {
	// MaxRetries is the maximum number of retry attempts after the first
	// failure. A value of 3 means the backend is queried at most 4 times
	// (1 original + 3 retries). Default: 3.
	MaxRetries int

	// InitialBackoff is the wait duration before the first retry attempt.
	// Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed backoff so it never exceeds this value.
	// Default: 30s.
	MaxBackoff time.Duration

	// BackoffFactor is the exponential growth multiplier applied to
	// InitialBackoff on successive retries
	// (backoff = min(InitialBackoff * BackoffFactor^attempt, MaxBackoff)).
	// Default: 2.0.
	BackoffFactor float64

	// JitterFraction adds random noise to the computed backoff in the range
	// [0, JitterFraction * backoff] to avoid thundering-herd problems.
	// Default: 0.1 (10% jitter).
	JitterFraction float64

	// RetryableFunc returns true when an error should trigger a retry. The
	// default retries only backend failures, checked with
	// errors.Is(err, wrapper.ErrBackend); argument validation and parse
	// failures are deterministic and never worth repeating.
	RetryableFunc func(error) bool
}

// defaultRetryableFunc retries backend failures only.
func defaultRetryableFunc(err error) bool {
	return errors.Is(err, wrapper.ErrBackend)
}

// applyDefaults fills in zero-valued fields in config.
func applyDefaults(config *Config) {
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}

	if config.InitialBackoff == 0 {
		config.InitialBackoff = time.Second
	}

	if config.MaxBackoff == 0 {
		config.MaxBackoff = 30 * time.Second
	}

	if config.BackoffFactor == 0 {
		config.BackoffFactor = 2.0
	}

	if config.JitterFraction == 0 {
		config.JitterFraction = 0.1
	}

	if config.RetryableFunc == nil {
		config.RetryableFunc = defaultRetryableFunc
	}
}

// computeBackoff returns the backoff duration for the given attempt (0-indexed).
// backoff = min(InitialBackoff * BackoffFactor^attempt, MaxBackoff) + jitter
func computeBackoff(config Config, attempt int) time.Duration {
	base := float64(config.InitialBackoff) * math.Pow(config.BackoffFactor, float64(attempt))
	if base > float64(config.MaxBackoff) {
		base = float64(config.MaxBackoff)
	}

	jitter := base * config.JitterFraction * rand.Float64() //nolint:gosec // non-cryptographic jitter is intentional
	return time.Duration(base + jitter)
}

// Retrier wraps an inner [wrapper.Wrapper] and repeats failed queries with
// exponential backoff. It implements the contract directly rather than as a
// decorator hook: a retry is by definition more than one dispatch, which the
// hook protocol forbids.
//
// Streams are retried at establishment only. Once the inner wrapper has
// handed over a stream, chunks flow through untouched and a mid-stream
// failure reaches the consumer on the first try; transparently replaying a
// half-delivered stream would duplicate output.
type Retrier struct {
	inner  wrapper.Wrapper
	config Config
}

// Ensure Retrier implements the contract at compile time.
var _ wrapper.Wrapper = (*Retrier)(nil)

// New builds a Retrier around inner. Zero-valued fields in config are
// replaced with safe defaults (see [Config]).
func New(inner wrapper.Wrapper, config Config) *Retrier {
	applyDefaults(&config)
	return &Retrier{inner: inner, config: config}
}

// QueryResponse implements [wrapper.Wrapper].
func (r *Retrier) QueryResponse(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, int, error) {
	var text string
	var tokens int
	err := r.attempt(ctx, func(ctx context.Context) error {
		var innerErr error
		text, tokens, innerErr = r.inner.QueryResponse(ctx, prompt, api)
		return innerErr
	})
	if err != nil {
		return "", 0, err
	}
	return text, tokens, nil
}

// QueryStream implements [wrapper.Wrapper]. Only the stream establishment is
// retried; mid-stream errors propagate to the consumer unchanged.
func (r *Retrier) QueryStream(ctx context.Context, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (*wrapper.Stream, error) {
	var stream *wrapper.Stream
	err := r.attempt(ctx, func(ctx context.Context) error {
		var innerErr error
		stream, innerErr = r.inner.QueryStream(ctx, prompt, api)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// QueryObject implements [wrapper.Wrapper].
func (r *Retrier) QueryObject(ctx context.Context, target any, prompt wrapper.PromptArgs, api wrapper.ApiArgs) error {
	return r.attempt(ctx, func(ctx context.Context) error {
		return r.inner.QueryObject(ctx, target, prompt, api)
	})
}

// QueryBlock implements [wrapper.Wrapper].
func (r *Retrier) QueryBlock(ctx context.Context, blockType string, prompt wrapper.PromptArgs, api wrapper.ApiArgs) (string, error) {
	var text string
	err := r.attempt(ctx, func(ctx context.Context) error {
		var innerErr error
		text, innerErr = r.inner.QueryBlock(ctx, blockType, prompt, api)
		return innerErr
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// attempt runs op up to 1 + MaxRetries times. Context cancellation is
// respected between attempts, retries are announced on the ambient span, and
// exhaustion wraps both [ErrRetryExhausted] and the last error so callers
// can unwrap either.
func (r *Retrier) attempt(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := computeBackoff(r.config, attempt-1)

			if span := observability.SpanFromContext(ctx); span != nil {
				span.AddEvent(observability.EventRetryAttempt,
					observability.Int(observability.AttrRetryAttempt, attempt),
					observability.Duration(observability.AttrRetryBackoff, backoff),
				)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if !r.config.RetryableFunc(err) {
			return err
		}
	}

	return fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, r.config.MaxRetries, lastErr)
}
