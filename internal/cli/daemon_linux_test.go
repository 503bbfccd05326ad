//go:build linux

package cli

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/cndevent/control"
	"github.com/momentics/cndevent/reactor"
)

const (
	testWait = 5 * time.Second
	testTick = 10 * time.Millisecond
)

func TestSignalPipe_StopsLoop(t *testing.T) {
	loop, err := reactor.New(reactor.WithMaxEvents(4))
	require.NoError(t, err)
	defer loop.Close()

	sp, err := installSignalPipe(loop, nil, syscall.SIGUSR1)
	require.NoError(t, err)
	defer sp.Close()
	assert.True(t, loop.Watching(sp.r))

	errc := make(chan error, 1)
	go func() { errc <- loop.Run() }()
	require.Eventually(t, func() bool { return loop.State() == reactor.StateWaiting }, testWait, testTick)

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(testWait):
		t.Fatal("loop did not stop on signal")
	}
	assert.Equal(t, reactor.StateStopped, loop.State())

	require.NoError(t, sp.Close())
	assert.False(t, loop.Watching(sp.r))
	require.NoError(t, sp.Close())
}

func TestDaemon_CtlRoundTrip(t *testing.T) {
	for _, waiter := range []string{control.WaiterSelect, control.WaiterEpoll} {
		t.Run(waiter, func(t *testing.T) {
			cfg := control.DefaultConfig()
			cfg.Socket = filepath.Join(t.TempDir(), "cnd.sock")
			cfg.Waiter = waiter
			cfg.LogLevel = "off"

			errc := make(chan error, 1)
			go func() { errc <- runDaemon(cfg, "", io.Discard) }()

			ctl := &CtlOptions{Socket: cfg.Socket, Timeout: time.Second}
			var out bytes.Buffer
			require.Eventually(t, func() bool {
				out.Reset()
				return runCtl(ctl, "ping", &out) == nil
			}, testWait, testTick)
			assert.Equal(t, "pong\n", out.String())

			out.Reset()
			require.NoError(t, runCtl(ctl, "dump", &out))
			assert.True(t, strings.HasPrefix(out.String(), "watch table: "), out.String())

			out.Reset()
			require.NoError(t, runCtl(ctl, "probes", &out))
			assert.Contains(t, out.String(), "platform.pid=")
			assert.Contains(t, out.String(), "metrics=")

			require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
			select {
			case err := <-errc:
				assert.NoError(t, err)
			case <-time.After(testWait):
				t.Fatal("daemon did not stop")
			}
		})
	}
}

func TestRunCtl_RejectsMultiline(t *testing.T) {
	err := runCtl(&CtlOptions{Socket: "/nonexistent", Timeout: time.Second}, "ping\ndump", io.Discard)
	assert.ErrorContains(t, err, "invalid command")
}
