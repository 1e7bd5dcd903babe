// Package bridge adapts producer-style asynchronous execution to blocking
// call and iteration styles. It is generic plumbing with no knowledge of the
// wrapper contract; the client and the composition patterns build on it.
//
// Three adapters cover the module's needs: [Call] runs a function on a
// dedicated worker goroutine and blocks for exactly one result or error,
// [Pipe] turns a push-style chunk producer into a pull-style iterator across
// a bounded channel, and [Gather] fans out independent tasks and joins their
// results in submission order, all-or-nothing.
//
// All three honor context cancellation: canceling the caller's context
// unblocks the caller and propagates cancellation into the worker, producer
// or task group. Worker panics never escape; they surface as errors wrapping
// [ErrBridge].
package bridge
