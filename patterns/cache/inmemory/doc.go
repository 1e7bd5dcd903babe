// Package inmemory provides a process-local cache.Store: a mutex-guarded
// map with per-entry TTL. It suits single-process deployments and tests;
// use rediscache to share entries across processes.
package inmemory
