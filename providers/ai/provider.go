package ai

import "context"

// Provider is the interface every backend implementation must satisfy. It
// covers the full lifecycle of a single request: authentication, endpoint
// configuration, dispatch, and response interpretation. Implement
// [StreamProvider] in addition when the backend supports incremental output.
type Provider interface {
	// Name identifies the backend, e.g. "openai" or "cerebras". Used in
	// error messages, logs and cost lookups.
	Name() string

	// Complete sends a chat request and returns the completed response.
	// Returns an error if the call fails, the context is cancelled, or
	// the response cannot be decoded.
	Complete(ctx context.Context, request *Request) (*Response, error)
}

// StreamProvider is an optional interface providers implement to support
// incremental (SSE-based) responses. Callers detect streaming support via
// type assertion: provider.(StreamProvider). Providers that do not implement
// it are driven through Complete and their output delivered in one piece.
type StreamProvider interface {
	Provider

	// Stream sends a chat request and pushes text chunks onto out in
	// emission order. The channel belongs to the caller and must not be
	// closed by the provider; returning ends the stream. Pushes must select
	// on ctx.Done() so an abandoned consumer unblocks the provider.
	// Pre-stream errors (auth, bad request, network) are returned before
	// anything is pushed. The returned Response carries the final usage and
	// finish reason.
	Stream(ctx context.Context, request *Request, out chan<- Chunk) (*Response, error)
}
