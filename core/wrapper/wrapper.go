package wrapper

import (
	"context"
)

// Op identifies which of the four contract operations an invocation runs.
// Decorators use it to dispatch their transformed query through the same
// operation the original caller invoked.
type Op string

const (
	// OpResponse is the blocking full-text operation.
	OpResponse Op = "query_response"
	// OpStream is the chunked streaming operation.
	OpStream Op = "query_stream"
	// OpObject is the structured-output operation.
	OpObject Op = "query_object"
	// OpBlock is the fenced-block operation.
	OpBlock Op = "query_block"
)

// String returns the operation name as used in logs and span attributes.
func (op Op) String() string {
	return string(op)
}

// Wrapper is the chat-completion contract. Providers implement it against a
// concrete backend, decorators implement it by owning exactly one inner
// Wrapper, and every operation is safe to call from multiple goroutines when
// the implementation documents so.
//
// All four operations accept the same two argument structures. Prompt
// arguments name the template variables of the query; api arguments carry
// execution parameters for the backend. How prompt arguments become model
// input is the implementation's business (see core/prompt for the renderers
// the bundled adapter uses).
type Wrapper interface {
	// QueryResponse sends the query and returns the complete response text
	// together with the total number of tokens the call consumed.
	QueryResponse(ctx context.Context, prompt PromptArgs, api ApiArgs) (string, int, error)

	// QueryStream sends the query and returns a lazy, finite, single-use
	// stream of response text chunks. Chunk order is the backend's emission
	// order. Errors occurring after the stream is established are delivered
	// through the stream itself, not the returned error.
	QueryStream(ctx context.Context, prompt PromptArgs, api ApiArgs) (*Stream, error)

	// QueryObject sends the query and decodes the response into target, which
	// must be a non-nil pointer. Output that cannot be decoded into target
	// fails with an error matching parse.ErrValidation.
	QueryObject(ctx context.Context, target any, prompt PromptArgs, api ApiArgs) error

	// QueryBlock sends the query and returns the contents of the requested
	// block type (e.g. "text", "md", "json", "python"). Output that cannot be
	// parsed as blockType fails with an error matching parse.ErrFormat.
	QueryBlock(ctx context.Context, blockType string, prompt PromptArgs, api ApiArgs) (string, error)
}

// ObjectAs runs QueryObject against w with a freshly allocated T and returns
// the decoded value. It is the generic convenience form of QueryObject.
//
// Example:
//
//	type Recipe struct {
//	    Name  string   `json:"name"`
//	    Steps []string `json:"steps"`
//	}
//
//	recipe, err := wrapper.ObjectAs[Recipe](ctx, w, wrapper.PromptArgs{
//	    "TASK": "Invent a quick weeknight pasta recipe.",
//	}, wrapper.ApiArgs{})
func ObjectAs[T any](ctx context.Context, w Wrapper, prompt PromptArgs, api ApiArgs) (T, error) {
	var out T
	if err := w.QueryObject(ctx, &out, prompt, api); err != nil {
		return out, err
	}
	return out, nil
}
