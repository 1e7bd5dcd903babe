package decorator

import (
	"context"
	"fmt"
	"sync"

	"github.com/leofalp/llmwrap/core/wrapper"
)

// Invocation carries one in-flight operation through a decorator's lifecycle.
// It exposes the caller's original arguments to the hook, owns the state
// machine (idle → preparing → dispatching → finalizing → done, failed from any
// middle state), and enforces the dispatch rule: exactly one query reaches the
// inner wrapper per invocation.
//
// All invocation state is per call, so a single Decorator serves concurrent
// callers without sharing anything between their invocations.
type Invocation struct {
	op        wrapper.Op
	prompt    wrapper.PromptArgs
	api       wrapper.ApiArgs
	blockType string
	target    any
	inner     wrapper.Wrapper

	mu          sync.Mutex
	state       State
	dispatched  bool
	result      *Result
	dispatchErr error
	protoErr    error
}

func newInvocation(op wrapper.Op, inner wrapper.Wrapper, prompt wrapper.PromptArgs, api wrapper.ApiArgs) *Invocation {
	return &Invocation{
		op:     op,
		prompt: prompt,
		api:    api,
		inner:  inner,
		state:  StateIdle,
	}
}

// Op returns the contract operation the caller invoked.
func (inv *Invocation) Op() wrapper.Op {
	return inv.op
}

// Prompt returns a copy of the caller's prompt arguments. Hooks may extend or
// rewrite the copy freely before handing it back in a [Request].
func (inv *Invocation) Prompt() wrapper.PromptArgs {
	return inv.prompt.Clone()
}

// API returns a copy of the caller's api arguments.
func (inv *Invocation) API() wrapper.ApiArgs {
	return inv.api.Clone()
}

// BlockType returns the fenced block type of a query_block invocation, and
// the empty string for every other operation.
func (inv *Invocation) BlockType() string {
	return inv.blockType
}

// Target returns the caller's decode target for a query_object invocation,
// and nil for every other operation.
func (inv *Invocation) Target() any {
	return inv.target
}

// Inner returns the decorated wrapper. Hooks use it for nested sub-queries
// during Prepare; those count as ordinary calls on the inner wrapper, not as
// the invocation's dispatch.
func (inv *Invocation) Inner() wrapper.Wrapper {
	return inv.inner
}

// State returns the current lifecycle state.
func (inv *Invocation) State() State {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.state
}

// Dispatch sends req to the inner wrapper using the invocation's operation.
// It is the manual dispatch point for hooks that need the inner result while
// still preparing; hooks that do not can simply return the request from
// Prepare and let the runtime dispatch it.
//
// Dispatch is one-shot. It is legal only while the invocation is preparing,
// and only once: a second call, a call outside Prepare, or a nil request all
// violate the protocol and fail the invocation with [ErrProtocol]. A dispatch
// whose backend call fails still counts as the invocation's one dispatch.
func (inv *Invocation) Dispatch(ctx context.Context, req *Request) (*Result, error) {
	inv.mu.Lock()
	var violation error
	switch {
	case inv.dispatched:
		violation = fmt.Errorf("%w: second dispatch on one invocation", ErrProtocol)
	case inv.state != StatePreparing:
		violation = fmt.Errorf("%w: dispatch while %s, want preparing", ErrProtocol, inv.state)
	case req == nil:
		violation = fmt.Errorf("%w: dispatch with nil request", ErrProtocol)
	}
	if violation != nil {
		if inv.protoErr == nil {
			inv.protoErr = violation
		}
		inv.mu.Unlock()
		return nil, violation
	}
	inv.dispatched = true
	inv.state = StateDispatching
	inv.mu.Unlock()

	res, err := inv.send(ctx, req)

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if err != nil {
		inv.dispatchErr = err
		inv.state = StateFailed
		return nil, err
	}
	inv.result = res
	inv.state = StatePreparing
	return res, nil
}

// send runs the transformed request through the inner wrapper with the same
// operation the caller invoked. query_object reuses the caller's target, so
// decoding lands directly in the value the caller will read.
func (inv *Invocation) send(ctx context.Context, req *Request) (*Result, error) {
	switch inv.op {
	case wrapper.OpResponse:
		text, tokens, err := inv.inner.QueryResponse(ctx, req.Prompt, req.API)
		if err != nil {
			return nil, err
		}
		return &Result{Op: inv.op, Text: text, Tokens: tokens}, nil
	case wrapper.OpStream:
		stream, err := inv.inner.QueryStream(ctx, req.Prompt, req.API)
		if err != nil {
			return nil, err
		}
		return &Result{Op: inv.op, Stream: stream}, nil
	case wrapper.OpObject:
		if err := inv.inner.QueryObject(ctx, inv.target, req.Prompt, req.API); err != nil {
			return nil, err
		}
		return &Result{Op: inv.op, Object: inv.target}, nil
	case wrapper.OpBlock:
		text, err := inv.inner.QueryBlock(ctx, inv.blockType, req.Prompt, req.API)
		if err != nil {
			return nil, err
		}
		return &Result{Op: inv.op, Text: text}, nil
	default:
		return nil, fmt.Errorf("llmwrap: unknown operation %q", inv.op)
	}
}

// transition force-sets the lifecycle state. Runtime use only.
func (inv *Invocation) transition(to State) {
	inv.mu.Lock()
	inv.state = to
	inv.mu.Unlock()
}

// status reports the dispatch bookkeeping the runtime checks after Prepare.
func (inv *Invocation) status() (dispatched bool, dispatchErr, protoErr error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.dispatched, inv.dispatchErr, inv.protoErr
}

// lastResult returns the recorded dispatch result, nil before any dispatch.
func (inv *Invocation) lastResult() *Result {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.result
}
