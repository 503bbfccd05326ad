// File: api/debug.go
// Author: momentics <momentics@gmail.com>
//
// Named probes exposed over the control socket.

package api

// Debug collects named probes and evaluates them on demand.
type Debug interface {
	// DumpState evaluates every probe.
	DumpState() map[string]any

	// RegisterProbe adds or replaces the probe called name.
	RegisterProbe(name string, fn func() any)
}
