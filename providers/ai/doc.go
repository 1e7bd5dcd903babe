// Package ai defines the shared, provider-agnostic types and interfaces used
// across all backend implementations. Each provider's conversion layer is
// responsible for mapping these types to its own wire format, keeping the
// rest of the codebase decoupled from provider-specific details.
//
// The two central interfaces are [Provider] for synchronous chat completions
// and [StreamProvider] for incremental responses. Request data flows through
// [Request] and responses come back as [Response]; streamed text crosses the
// caller's channel as [Chunk] values.
package ai
