package reactor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_RegistrationDuringWaitTakesEffectNextCycle(t *testing.T) {
	l, w := newFakeLoop(t)
	rec := &recorder{}
	anchor := mustEvent(t, 3, true, nop, nil)
	require.NoError(t, l.Add(anchor))

	startLoop(t, l, w)
	first := waitEntered(t, w)
	assert.Equal(t, []int{3}, first.Interest)

	late, err := NewEvent(12, true, rec, nil)
	require.NoError(t, err)
	require.NoError(t, l.Add(late))

	w.Trigger(12)
	second := waitEntered(t, w)
	assert.Empty(t, rec.get(), "the blocked wait did not watch fd 12")
	assert.Equal(t, []int{3, 12}, second.Interest)
	assert.Equal(t, 13, second.NFDs)

	w.Trigger(12)
	waitEntered(t, w)
	assert.Equal(t, []int{12}, rec.get())
}

func TestLoop_ConcurrentAddDelStress(t *testing.T) {
	const (
		workers = 8
		rounds  = 300
	)
	l, w := newFakeLoop(t, WithMaxEvents(workers*2))
	var fired sync.Map

	startLoop(t, l, w)
	waitEntered(t, w)

	mark := func(fd int, ctx any) { fired.Store(fd, true) }
	persistent := make([]*Event, workers)
	oneShot := make([]*Event, workers)
	for i := 0; i < workers; i++ {
		persistent[i] = mustEvent(t, 200+i, true, mark, nil)
		oneShot[i] = mustEvent(t, 300+i, false, mark, nil)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			persistent, oneShot := persistent[i], oneShot[i]
			for r := 0; r < rounds; r++ {
				assert.NoError(t, l.Add(persistent))
				_ = l.Add(oneShot)
				if r%3 == 0 {
					w.Trigger(200+i, 300+i)
				}
				assert.NoError(t, l.Del(persistent))
				_ = l.Del(oneShot)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-w.Entered():
			}
		}
	}()
	wg.Wait()
	close(done)

	assert.Zero(t, l.Len())
	assert.Zero(t, l.NFDs())
	for _, e := range l.Snapshot() {
		t.Errorf("unexpected entry %+v", e)
	}
}
