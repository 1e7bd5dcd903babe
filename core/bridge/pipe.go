package bridge

import (
	"context"
	"fmt"
	"iter"
)

// DefaultBufferSize is the capacity of the pipe channel when the caller does
// not choose one. It trades a little memory for producer/consumer decoupling
// without letting a slow consumer accumulate an unbounded backlog.
const DefaultBufferSize = 16

// streamItem is the tagged variant carried across the pipe channel: a chunk
// (err nil), or an error that terminates the stream. Normal completion is the
// channel closing, so no sentinel value ever reaches the consumer.
type streamItem[T any] struct {
	chunk T
	err   error
}

// Pipe returns a lazy pull-style iterator over the values produce emits.
// Nothing runs until the sequence is consumed; the first pull starts produce
// on a dedicated producer goroutine. Values cross a bounded channel of the
// given capacity (DefaultBufferSize when size <= 0) in strict FIFO order, so a
// fast producer is throttled rather than buffering without limit.
//
// The producer pushes values through emit. When produce returns a non-nil
// error, that error is delivered to the consumer after every previously
// emitted value, as the iterator's final pair; a recovered producer panic is
// delivered the same way, wrapped in [ErrBridge]. Returning nil ends the
// stream normally.
//
// Abandoning the iterator (breaking out of the range loop) cancels the
// producer's context; a blocked emit then returns that cancellation error so
// the producer can unwind promptly.
func Pipe[T any](ctx context.Context, size int, produce func(ctx context.Context, emit func(T) error) error) iter.Seq2[T, error] {
	if size <= 0 {
		size = DefaultBufferSize
	}
	if ctx == nil {
		ctx = context.Background()
	}

	return func(yield func(T, error) bool) {
		producerContext, cancelProducer := context.WithCancel(ctx)
		defer cancelProducer()

		items := make(chan streamItem[T], size)

		// send pushes one item unless the consumer is gone.
		send := func(item streamItem[T]) bool {
			select {
			case items <- item:
				return true
			case <-producerContext.Done():
				return false
			}
		}

		go func() {
			defer close(items)
			defer func() {
				if recovered := recover(); recovered != nil {
					send(streamItem[T]{err: fmt.Errorf("%w: panic in stream producer: %v", ErrBridge, recovered)})
				}
			}()

			emit := func(chunk T) error {
				if !send(streamItem[T]{chunk: chunk}) {
					return producerContext.Err()
				}
				return nil
			}

			if err := produce(producerContext, emit); err != nil {
				send(streamItem[T]{err: err})
			}
		}()

		for item := range items {
			if item.err != nil {
				var zero T
				yield(zero, item.err)
				return
			}
			if !yield(item.chunk, nil) {
				return
			}
		}
	}
}
