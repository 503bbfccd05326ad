// File: reactor/state.go
// Author: momentics <momentics@gmail.com>

package reactor

// State is the dispatcher state.
type State int32

const (
	// StateIdle is the state before Run.
	StateIdle State = iota
	// StateWaiting means blocked in the readiness wait.
	StateWaiting
	// StateDispatching means handlers are running, mutex released.
	StateDispatching
	// StateStopped is terminal.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateDispatching:
		return "dispatching"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
