package bridge

import (
	"context"
	"fmt"
	"sync"
)

// taskError pairs a task's submission index with its error for error collection.
type taskError struct {
	index int
	err   error
}

// Gather runs every task on its own goroutine and joins them. Results come
// back in submission order regardless of completion order, which is what lets
// callers fan out sub-queries with unpredictable latencies and still assemble
// a deterministic final query.
//
// The join is all-or-nothing: the first failure cancels the shared task
// context so the remaining tasks can abort, Gather waits for every goroutine
// to return, and the failure with the lowest submission index is returned with
// no partial results. A panic inside a task is treated as a failure wrapping
// [ErrBridge].
//
// Gather with no tasks returns an empty slice.
func Gather[T any](ctx context.Context, tasks ...func(context.Context) (T, error)) ([]T, error) {
	if len(tasks) == 0 {
		return []T{}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	taskContext, cancelTasks := context.WithCancel(ctx)
	defer cancelTasks()

	var waitGroup sync.WaitGroup
	results := make([]T, len(tasks))
	errorChannel := make(chan taskError, len(tasks))

	for taskIndex, task := range tasks {
		waitGroup.Add(1)

		go func(index int, run func(context.Context) (T, error)) {
			defer waitGroup.Done()
			defer func() {
				if recovered := recover(); recovered != nil {
					errorChannel <- taskError{index: index, err: fmt.Errorf("%w: panic in task %d: %v", ErrBridge, index, recovered)}
					cancelTasks()
				}
			}()

			value, err := run(taskContext)
			if err != nil {
				errorChannel <- taskError{index: index, err: err}
				// Fail-fast: let the remaining tasks observe the cancellation.
				cancelTasks()
				return
			}

			results[index] = value
		}(taskIndex, task)
	}

	waitGroup.Wait()
	close(errorChannel)

	// Pick the failure with the lowest submission index so the reported error
	// is deterministic even when several tasks fail in racing order.
	firstFailure := taskError{index: -1}
	for failure := range errorChannel {
		if firstFailure.index == -1 || failure.index < firstFailure.index {
			firstFailure = failure
		}
	}

	if firstFailure.index != -1 {
		return nil, fmt.Errorf("task %d failed: %w", firstFailure.index, firstFailure.err)
	}

	return results, nil
}
