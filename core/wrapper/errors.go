package wrapper

import "errors"

// ErrBackend marks opaque provider failures surfaced through the contract.
// The backend's own error is wrapped alongside so callers can still inspect
// it, but the contract makes no promise about its shape.
var ErrBackend = errors.New("llmwrap: backend failure")

// ErrStreamConsumed is yielded by a [Stream] when it is iterated a second
// time. Streams are single-use: restarting one cannot replay backend output.
var ErrStreamConsumed = errors.New("llmwrap: stream already consumed")
