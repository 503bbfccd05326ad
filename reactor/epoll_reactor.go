//go:build linux
// +build linux

// File: reactor/epoll_reactor.go
// Author: momentics <momentics@gmail.com>
//
// Level-triggered epoll(7) readiness waiter. The kernel interest list is
// reconciled against the loop's snapshot before every wait.

package reactor

import (
	"fmt"
	"math"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/cndevent/api"
)

const defaultEpollEvents = 128

type epollWaiter struct {
	epfd    int
	events  []unix.EpollEvent
	watched api.FDSet
	scratch []int
	closed  atomic.Bool
}

// NewEpollWaiter returns a waiter built on epoll, reporting at most
// maxEvents descriptors per wait (128 when maxEvents <= 0).
func NewEpollWaiter(maxEvents int) (api.Waiter, error) {
	if maxEvents <= 0 {
		maxEvents = defaultEpollEvents
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &epollWaiter{
		epfd:   epfd,
		events: make([]unix.EpollEvent, maxEvents),
	}, nil
}

func (w *epollWaiter) MaxFD() int { return math.MaxInt32 }

func (w *epollWaiter) Wait(interest *api.FDSet, nfds int, ready *api.FDSet) (int, error) {
	if w.closed.Load() {
		return 0, api.ErrWaiterClosed
	}
	if err := w.reconcile(interest, nfds); err != nil {
		return 0, err
	}

	n, err := unix.EpollWait(w.epfd, w.events, -1)
	if err != nil {
		if err == unix.EINTR {
			return 0, api.ErrInterrupted
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}

	ready.Zero()
	count := 0
	for i := 0; i < n; i++ {
		ev := w.events[i]
		if ev.Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) == 0 {
			continue
		}
		fd := int(ev.Fd)
		if !ready.IsSet(fd) {
			ready.Set(fd)
			count++
		}
	}
	return count, nil
}

func (w *epollWaiter) reconcile(interest *api.FDSet, nfds int) error {
	w.scratch = w.scratch[:0]
	w.watched.Each(func(fd int) {
		if fd >= nfds || !interest.IsSet(fd) {
			w.scratch = append(w.scratch, fd)
		}
	})
	for _, fd := range w.scratch {
		// the descriptor may already be closed, which drops it from epoll
		_ = unix.EpollCtl(w.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		w.watched.Clear(fd)
	}

	w.scratch = w.scratch[:0]
	interest.Each(func(fd int) {
		if fd < nfds && !w.watched.IsSet(fd) {
			w.scratch = append(w.scratch, fd)
		}
	})
	for _, fd := range w.scratch {
		ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
		err := unix.EpollCtl(w.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
		if err == unix.EEXIST {
			err = unix.EpollCtl(w.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
		}
		if err != nil {
			return fmt.Errorf("epoll ctl add fd %d: %w", fd, err)
		}
		w.watched.Set(fd)
	}
	return nil
}

func (w *epollWaiter) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	return unix.Close(w.epfd)
}
