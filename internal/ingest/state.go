package ingest

import "time"

// State is one stage of the ingest run. A Pipeline walks the states in
// declaration order; Failed is terminal and reachable only from the states
// that can abort the run (source discovery, per-source resolution and the
// persist write).
type State int

const (
	StateIdle State = iota
	StateDiscoverSources
	StateResolvePerSource
	StateConcatenate
	StateDeduplicate
	StateClean
	StatePersist
	StateVerify
	StateDone
	StateFailed
)

// String returns the snake_case state name used in logs and as the metrics
// step label.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscoverSources:
		return "discover_sources"
	case StateResolvePerSource:
		return "resolve_per_source"
	case StateConcatenate:
		return "concatenate"
	case StateDeduplicate:
		return "deduplicate"
	case StateClean:
		return "clean"
	case StatePersist:
		return "persist"
	case StateVerify:
		return "verify"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StateTiming records how long one state took. The Report carries the full
// trace in execution order.
type StateTiming struct {
	State   State
	Elapsed time.Duration
}
