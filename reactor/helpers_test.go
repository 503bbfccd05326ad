package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/cndevent/api"
	"github.com/momentics/cndevent/fake"
)

// stubNonblock lets tests register synthetic descriptors.
func stubNonblock(t *testing.T) {
	t.Helper()
	orig := setNonblock
	setNonblock = func(int) error { return nil }
	t.Cleanup(func() { setNonblock = orig })
}

func newFakeLoop(t *testing.T, opts ...Option) (*Loop, *fake.Waiter) {
	t.Helper()
	stubNonblock(t)
	w := fake.NewWaiter()
	l, err := New(append([]Option{WithWaiter(w)}, opts...)...)
	require.NoError(t, err)
	return l, w
}

// startLoop runs l in the background and stops it at cleanup.
func startLoop(t *testing.T, l *Loop, w *fake.Waiter) <-chan error {
	t.Helper()
	errc := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		errc <- l.Run()
		close(done)
	}()
	t.Cleanup(func() {
		l.Stop()
		_ = w.Close()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("event loop did not exit")
		}
	})
	return errc
}

func waitEntered(t *testing.T, w *fake.Waiter) fake.Snapshot {
	t.Helper()
	select {
	case s := <-w.Entered():
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the loop to enter its wait")
		return fake.Snapshot{}
	}
}

func mustEvent(t *testing.T, fd int, persistent bool, fn func(fd int, ctx any), ctx any) *Event {
	t.Helper()
	ev, err := NewEvent(fd, persistent, api.HandlerFunc(fn), ctx)
	require.NoError(t, err)
	return ev
}

func nop(int, any) {}
