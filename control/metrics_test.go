package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	mr := NewMetricsRegistry()
	mr.Add("reactor.fired", 2)
	mr.Add("reactor.fired", 3)
	mr.Set("reactor.registered", 4)

	assert.Equal(t, int64(5), mr.Get("reactor.fired"))
	snap := mr.GetSnapshot()
	assert.Equal(t, map[string]int64{"reactor.fired": 5, "reactor.registered": 4}, snap)
	snap["reactor.fired"] = 0
	assert.Equal(t, int64(5), mr.Get("reactor.fired"), "snapshot is a copy")
	assert.False(t, mr.Updated().IsZero())

	var none *MetricsRegistry
	none.Add("x", 1)
	assert.Zero(t, none.Get("x"))
	assert.Empty(t, none.GetSnapshot())
}

func TestDebugProbes(t *testing.T) {
	dp := NewDebugProbes()
	dp.RegisterProbe("answer", func() any { return 42 })
	RegisterPlatformProbes(dp)

	state := dp.DumpState()
	assert.Equal(t, 42, state["answer"])
	assert.Contains(t, state, "platform.cpus")
	assert.Contains(t, state, "platform.pid")
	assert.Equal(t, "answer", dp.Names()[0])
}
