package bridge

import "errors"

// ErrBridge marks failures of the bridging machinery itself, as opposed to
// errors returned by the bridged function: recovered worker panics and other
// cross-goroutine marshalling faults. Errors returned by a worker, producer
// or task pass through unwrapped.
var ErrBridge = errors.New("llmwrap: bridge failure")
