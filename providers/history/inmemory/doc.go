// Package inmemory provides a concurrency-safe, slice-backed implementation
// of the [history.Store] interface for keeping query records in process
// memory. It is designed for tests and single-process use cases where
// persistence across restarts is not required.
// The main entry point is [New], which returns a ready-to-use [Store].
package inmemory
