package reactor

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_Dump(t *testing.T) {
	l, _ := newFakeLoop(t, WithMaxEvents(4))
	a := mustEvent(t, 7, true, nop, nil)
	b := mustEvent(t, 3, false, nop, nil)
	c := mustEvent(t, 12, true, nop, nil)
	for _, ev := range []*Event{a, b, c} {
		require.NoError(t, l.Add(ev))
	}
	require.NoError(t, l.Del(b))

	assert.Equal(t, []WatchEntry{
		{Slot: 0, FD: 7, Persistent: true},
		{Slot: 2, FD: 12, Persistent: true},
	}, l.Snapshot())

	var buf bytes.Buffer
	require.NoError(t, l.Dump(&buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "dump", buf.Bytes())
}
