package bridge

import (
	"context"
	"fmt"
)

// callResult pairs a worker's value with its error for single-slot delivery.
type callResult[T any] struct {
	value T
	err   error
}

// Call runs fn on a dedicated worker goroutine and blocks until it delivers a
// result, delivers an error, or ctx is canceled. Delivery is exactly-once: the
// worker writes a single value into a one-slot channel and exits.
//
// If ctx is canceled before the worker finishes, Call returns ctx.Err()
// immediately and cancels the worker's derived context; the worker's eventual
// result is abandoned into the buffered slot, so the goroutine always
// terminates and never blocks on delivery.
//
// A panic inside fn is recovered and returned as an error wrapping [ErrBridge]
// rather than crashing the process.
func Call[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	workerContext, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// One buffered slot so the worker can always deliver and exit, even when
	// the caller has already abandoned the call.
	resultChannel := make(chan callResult[T], 1)

	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				resultChannel <- callResult[T]{err: fmt.Errorf("%w: panic in worker: %v", ErrBridge, recovered)}
			}
		}()

		value, err := fn(workerContext)
		resultChannel <- callResult[T]{value: value, err: err}
	}()

	select {
	case result := <-resultChannel:
		return result.value, result.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
