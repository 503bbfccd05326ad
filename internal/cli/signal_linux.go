// File: internal/cli/signal_linux.go
// Author: momentics <momentics@gmail.com>
//
// Self-pipe bridging os/signal into the event loop.

//go:build linux
// +build linux

package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/momentics/cndevent/api"
	"github.com/momentics/cndevent/internal/logging"
	"github.com/momentics/cndevent/reactor"
)

// signalPipe writes one byte per received signal into a pipe whose read end
// is a persistent event that stops the loop.
type signalPipe struct {
	loop   *reactor.Loop
	logger *logging.Logger
	r, w   int
	ev     reactor.Event
	sigs   chan os.Signal
	done   chan struct{}
	once   sync.Once
}

func installSignalPipe(l *reactor.Loop, logger *logging.Logger, sigs ...os.Signal) (*signalPipe, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("signal pipe: %w", err)
	}
	sp := &signalPipe{
		loop:   l,
		logger: logger,
		r:      p[0],
		w:      p[1],
		sigs:   make(chan os.Signal, 1),
		done:   make(chan struct{}),
	}
	if err := sp.ev.Set(sp.r, true, api.HandlerFunc(sp.onSignal), nil); err != nil {
		sp.closeFDs()
		return nil, err
	}
	if err := l.Add(&sp.ev); err != nil {
		sp.closeFDs()
		return nil, fmt.Errorf("register signal pipe: %w", err)
	}
	signal.Notify(sp.sigs, sigs...)
	go sp.relay()
	return sp, nil
}

func (sp *signalPipe) relay() {
	for {
		select {
		case sig := <-sp.sigs:
			var b [1]byte
			if s, ok := sig.(syscall.Signal); ok {
				b[0] = byte(s)
			}
			// a full pipe already holds a pending wakeup
			if _, err := unix.Write(sp.w, b[:]); err != nil && !errors.Is(err, unix.EAGAIN) {
				sp.logger.Warning().Err(err).Log("signal pipe write failed")
			}
		case <-sp.done:
			return
		}
	}
}

func (sp *signalPipe) onSignal(fd int, _ any) {
	var buf [16]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if n <= 0 || err != nil {
			break
		}
		for _, s := range buf[:n] {
			sp.logger.Notice().Str("signal", syscall.Signal(s).String()).Log("shutdown requested")
		}
	}
	sp.loop.Stop()
}

func (sp *signalPipe) closeFDs() {
	_ = unix.Close(sp.r)
	_ = unix.Close(sp.w)
}

// Close stops signal delivery, deregisters the pipe and closes it.
func (sp *signalPipe) Close() error {
	sp.once.Do(func() {
		signal.Stop(sp.sigs)
		close(sp.done)
		_ = sp.loop.Del(&sp.ev)
		sp.closeFDs()
	})
	return nil
}
