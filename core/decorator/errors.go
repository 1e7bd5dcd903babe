package decorator

import "errors"

// ErrProtocol reports a hook that violated the one-dispatch rule: an
// invocation must dispatch to the inner wrapper exactly once, either by
// returning a request from Prepare or by calling [Invocation.Dispatch]
// once. Zero dispatches and second dispatches both fail with this error
// rather than hanging or silently succeeding.
var ErrProtocol = errors.New("llmwrap: hook violated dispatch protocol")
