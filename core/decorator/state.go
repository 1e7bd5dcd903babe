package decorator

// State identifies where an invocation is in its lifecycle. Transitions are
// strictly forward: Idle → Preparing → Dispatching → Finalizing → Done, with
// Failed reachable from Preparing, Dispatching and Finalizing. A failed
// invocation never reaches Done, so no partial success is observable.
type State int

const (
	// StateIdle is the initial state before the hook runs.
	StateIdle State = iota
	// StatePreparing covers the hook's Prepare phase, including any nested
	// sub-queries it issues against the inner wrapper.
	StatePreparing
	// StateDispatching covers the single dispatch of the transformed
	// request to the inner wrapper.
	StateDispatching
	// StateFinalizing covers the hook's Finalize phase.
	StateFinalizing
	// StateDone means the final result has been handed back to the caller.
	StateDone
	// StateFailed means an error occurred and propagated to the caller.
	StateFailed
)

// String returns the lowercase state name used in logs and span attributes.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateDispatching:
		return "dispatching"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
