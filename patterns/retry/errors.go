package retry

import "errors"

// ErrRetryExhausted is returned when all retry attempts have been consumed
// without a successful response. The error wraps the last underlying failure
// so callers can use [errors.Is] / [errors.As] to inspect the root cause.
//
// Example:
//
//	if errors.Is(err, retry.ErrRetryExhausted) {
//	    // all retries failed
//	}
var ErrRetryExhausted = errors.New("llmwrap: all retry attempts exhausted")
