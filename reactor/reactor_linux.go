//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// select(2)-based readiness waiter.

package reactor

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/cndevent/api"
)

// selectMaxFD is FD_SETSIZE on Linux.
const selectMaxFD = 1024

type selectWaiter struct {
	rfds   unix.FdSet
	closed atomic.Bool
}

// NewSelectWaiter returns a waiter built on select(2). It can watch
// descriptors below 1024 only.
func NewSelectWaiter() (api.Waiter, error) {
	return &selectWaiter{}, nil
}

func (w *selectWaiter) MaxFD() int { return selectMaxFD }

func (w *selectWaiter) Wait(interest *api.FDSet, nfds int, ready *api.FDSet) (int, error) {
	if w.closed.Load() {
		return 0, api.ErrWaiterClosed
	}
	if nfds > selectMaxFD {
		return 0, fmt.Errorf("select: nfds %d: %w", nfds, api.ErrFDOutOfRange)
	}

	w.rfds.Zero()
	interest.Each(func(fd int) {
		if fd < nfds {
			w.rfds.Set(fd)
		}
	})

	n, err := unix.Select(nfds, &w.rfds, nil, nil, nil)
	if err != nil {
		if err == unix.EINTR {
			return 0, api.ErrInterrupted
		}
		return 0, fmt.Errorf("select: %w", err)
	}

	ready.Zero()
	for fd := 0; fd < nfds; fd++ {
		if w.rfds.IsSet(fd) {
			ready.Set(fd)
		}
	}
	return n, nil
}

func (w *selectWaiter) Close() error {
	w.closed.Store(true)
	return nil
}
