//go:build linux

package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/cndevent/api"
)

func newPipe(t *testing.T) (r, w int) {
	t.Helper()
	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_CLOEXEC))
	t.Cleanup(func() {
		_ = unix.Close(p[0])
		_ = unix.Close(p[1])
	})
	return p[0], p[1]
}

func drainFD(fd int) {
	var buf [64]byte
	for {
		if n, err := unix.Read(fd, buf[:]); n <= 0 || err != nil {
			return
		}
	}
}

func TestWaiters_EndToEnd(t *testing.T) {
	waiters := map[string]func() (api.Waiter, error){
		"select": NewSelectWaiter,
		"epoll":  func() (api.Waiter, error) { return NewEpollWaiter(0) },
	}
	for name, newWaiter := range waiters {
		t.Run(name, func(t *testing.T) {
			waiter, err := newWaiter()
			require.NoError(t, err)
			l, err := New(WithWaiter(waiter), WithMaxEvents(4))
			require.NoError(t, err)
			defer l.Close()

			dataR, dataW := newPipe(t)
			stopR, stopW := newPipe(t)

			got := make(chan int, 16)
			data, err := NewEvent(dataR, true, api.HandlerFunc(func(fd int, ctx any) {
				drainFD(fd)
				got <- fd
			}), nil)
			require.NoError(t, err)
			stop, err := NewEvent(stopR, false, api.HandlerFunc(func(fd int, ctx any) {
				drainFD(fd)
				l.Stop()
			}), nil)
			require.NoError(t, err)
			require.NoError(t, l.Add(data))
			require.NoError(t, l.Add(stop))

			errc := make(chan error, 1)
			go func() { errc <- l.Run() }()

			for i := 0; i < 3; i++ {
				_, err := unix.Write(dataW, []byte{'x'})
				require.NoError(t, err)
				select {
				case fd := <-got:
					assert.Equal(t, dataR, fd)
				case <-time.After(5 * time.Second):
					t.Fatal("data handler did not fire")
				}
			}
			assert.True(t, l.Registered(data))

			_, err = unix.Write(stopW, []byte{'q'})
			require.NoError(t, err)
			select {
			case err := <-errc:
				assert.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("loop did not stop")
			}
			assert.False(t, l.Registered(stop))
		})
	}
}

func TestEvent_SetMakesDescriptorNonBlocking(t *testing.T) {
	r, _ := newPipe(t)
	_, err := NewEvent(r, false, api.HandlerFunc(nop), nil)
	require.NoError(t, err)

	flags, err := unix.FcntlInt(uintptr(r), unix.F_GETFL, 0)
	require.NoError(t, err)
	assert.NotZero(t, flags&unix.O_NONBLOCK)
}

func TestSelectWaiter_Limits(t *testing.T) {
	w, err := NewSelectWaiter()
	require.NoError(t, err)
	assert.Equal(t, 1024, w.MaxFD())

	var interest, ready api.FDSet
	_, err = w.Wait(&interest, 2048, &ready)
	assert.ErrorIs(t, err, api.ErrFDOutOfRange)

	require.NoError(t, w.Close())
	_, err = w.Wait(&interest, 0, &ready)
	assert.ErrorIs(t, err, api.ErrWaiterClosed)
}

func TestEpollWaiter_ReconcilesInterest(t *testing.T) {
	w, err := NewEpollWaiter(8)
	require.NoError(t, err)
	defer w.Close()

	r1, w1 := newPipe(t)
	r2, w2 := newPipe(t)
	_, err = unix.Write(w1, []byte{1})
	require.NoError(t, err)
	_, err = unix.Write(w2, []byte{1})
	require.NoError(t, err)

	var interest, ready api.FDSet
	interest.Set(r1)
	interest.Set(r2)
	nfds := max(r1, r2) + 1
	n, err := w.Wait(&interest, nfds, &ready)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	interest.Clear(r2)
	n, err = w.Wait(&interest, r1+1, &ready)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, ready.IsSet(r1))
	assert.False(t, ready.IsSet(r2))
}
