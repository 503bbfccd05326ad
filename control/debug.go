// File: control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Named probes evaluated on demand by the control socket.

package control

import (
	"sort"
	"sync"

	"github.com/momentics/cndevent/api"
)

var _ api.Debug = (*DebugProbes)(nil)

// Probe reports one value. Probes run on the caller's goroutine and must not
// block.
type Probe func() any

// DebugProbes is a concurrency-safe set of named probes.
type DebugProbes struct {
	mu    sync.RWMutex
	named map[string]Probe
}

// NewDebugProbes returns an empty probe set.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{named: make(map[string]Probe)}
}

// RegisterProbe adds fn under name, replacing any previous probe.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.named[name] = fn
}

// Names returns the registered probe names in order.
func (dp *DebugProbes) Names() []string {
	dp.mu.RLock()
	names := make([]string, 0, len(dp.named))
	for name := range dp.named {
		names = append(names, name)
	}
	dp.mu.RUnlock()
	sort.Strings(names)
	return names
}

// DumpState evaluates every probe outside the lock, so a probe may itself
// register probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	snapshot := make(map[string]Probe, len(dp.named))
	for name, p := range dp.named {
		snapshot[name] = p
	}
	dp.mu.RUnlock()

	state := make(map[string]any, len(snapshot))
	for name, p := range snapshot {
		state[name] = p()
	}
	return state
}
