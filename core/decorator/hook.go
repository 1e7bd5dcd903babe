package decorator

import (
	"context"

	"github.com/leofalp/llmwrap/core/wrapper"
)

// Request is the transformed argument pair a hook produces for dispatch to
// the inner wrapper.
type Request struct {
	Prompt wrapper.PromptArgs
	API    wrapper.ApiArgs
}

// Result is the operation-tagged outcome of a dispatch. Only the fields
// matching the invocation's operation are populated: Text and Tokens for
// query_response, Stream for query_stream, Object (the caller's decoded
// target pointer) for query_object, Text for query_block.
type Result struct {
	Op     wrapper.Op
	Text   string
	Tokens int
	Stream *wrapper.Stream
	Object any
}

// Hook is the two-step interception a decorator runs around every
// invocation.
//
// Prepare receives the invocation carrying the caller's arguments and
// produces the query to dispatch. It may run arbitrary nested work against
// inv.Inner() first, including concurrent fan-out sub-queries (bridge.Gather
// joins them in submission order, all-or-nothing). Prepare signals its
// dispatch in exactly one of two ways: return a non-nil *Request for the
// runtime to dispatch, or call [Invocation.Dispatch] once and return nil.
// Anything else violates the protocol and fails with [ErrProtocol].
//
// Finalize receives the dispatch result and may post-process or replace it;
// returning nil keeps the result unchanged. For query_object invocations
// the result carries the caller's target pointer, so post-processing
// mutates the decoded value in place rather than replacing Object.
type Hook interface {
	Prepare(ctx context.Context, inv *Invocation) (*Request, error)
	Finalize(ctx context.Context, inv *Invocation, res *Result) (*Result, error)
}

// Hooks adapts plain functions to the [Hook] interface. A nil PrepareFunc
// dispatches the caller's arguments unchanged; a nil FinalizeFunc keeps the
// dispatch result unchanged. The zero value is therefore the pass-through
// hook: a decorator built with it forwards every operation verbatim.
//
// Example:
//
//	upper := decorator.New(inner, decorator.Hooks{
//	    PrepareFunc: func(ctx context.Context, inv *decorator.Invocation) (*decorator.Request, error) {
//	        prompt := inv.Prompt()
//	        prompt["TASK"] = "Answer in uppercase."
//	        return &decorator.Request{Prompt: prompt, API: inv.API()}, nil
//	    },
//	})
type Hooks struct {
	PrepareFunc  func(ctx context.Context, inv *Invocation) (*Request, error)
	FinalizeFunc func(ctx context.Context, inv *Invocation, res *Result) (*Result, error)
}

// Ensure Hooks implements Hook at compile time.
var _ Hook = Hooks{}

// Prepare implements [Hook]. With a nil PrepareFunc it returns the caller's
// arguments as the request, so the runtime dispatches them unchanged.
func (h Hooks) Prepare(ctx context.Context, inv *Invocation) (*Request, error) {
	if h.PrepareFunc == nil {
		return &Request{Prompt: inv.Prompt(), API: inv.API()}, nil
	}
	return h.PrepareFunc(ctx, inv)
}

// Finalize implements [Hook]. With a nil FinalizeFunc it returns nil, which
// keeps the dispatch result unchanged.
func (h Hooks) Finalize(ctx context.Context, inv *Invocation, res *Result) (*Result, error) {
	if h.FinalizeFunc == nil {
		return nil, nil
	}
	return h.FinalizeFunc(ctx, inv, res)
}
