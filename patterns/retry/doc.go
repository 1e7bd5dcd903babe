// Package retry repeats failed queries with exponential backoff and jitter.
// The [Retrier] wraps any wrapper in the chain; by default it retries only
// backend failures (wrapper.ErrBackend) and gives up after three retries,
// wrapping [ErrRetryExhausted] around the last error. Streams are retried at
// establishment only, never mid-flight.
//
//	reliable := retry.New(client, retry.Config{MaxRetries: 5})
//	answer, _, err := reliable.QueryResponse(ctx, prompt, api)
package retry
