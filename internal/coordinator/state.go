package coordinator

import (
	"fmt"
	"time"
)

// State is the lifecycle state of the coordinator.
type State int

const (
	// StateIdle means no refresh has run yet.
	StateIdle State = iota
	// StateRefreshing means a cycle is in flight.
	StateRefreshing
	// StateReady means the last cycle succeeded.
	StateReady
	// StateFailed means the last cycle failed; the previous snapshot, if any,
	// is still served.
	StateFailed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Status is a point-in-time view of the coordinator.
type Status struct {
	State       State
	LastError   error     // Fault of the last failed cycle; nil after a success
	LastSuccess time.Time // Completion time of the last successful cycle
	LastFailure time.Time // Completion time of the last failed cycle
	Successes   uint64
	Failures    uint64
}

// Update is what a completed refresh cycle produced. Every caller that
// joined the cycle and every observer receives the same Update.
type Update struct {
	// Snapshot is the current snapshot after the cycle: the new one on
	// success, the previous one (possibly nil) on failure.
	Snapshot *Snapshot
	State    State
	Err      error
	Started  time.Time
	Finished time.Time
}

// OK reports whether the cycle succeeded.
func (u Update) OK() bool {
	return u.Err == nil
}
