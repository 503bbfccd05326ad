// File: fake/waiter.go
// Author: momentics <momentics@gmail.com>
//
// Package fake provides a scripted api.Waiter for deterministic dispatcher
// tests: each Wait consumes one queued step.

package fake

import (
	"sync"

	"github.com/momentics/cndevent/api"
)

var _ api.Waiter = (*Waiter)(nil)

// Snapshot records the arguments of one Wait call.
type Snapshot struct {
	Interest []int
	NFDs     int
}

// Step is one scripted outcome of Wait.
type Step struct {
	FDs []int
	Err error
}

// Waiter is a scripted api.Waiter. Each Wait consumes one Step, reporting
// the scripted descriptors that are in the interest set and below nfds,
// or returning the scripted error.
type Waiter struct {
	steps     chan Step
	entered   chan Snapshot
	closed    chan struct{}
	closeOnce sync.Once
	maxFD     int

	mu      sync.Mutex
	history []Snapshot
}

// NewWaiter creates a Waiter accepting descriptors below 65536.
func NewWaiter() *Waiter {
	return &Waiter{
		steps:   make(chan Step, 64),
		entered: make(chan Snapshot, 64),
		closed:  make(chan struct{}),
		maxFD:   1 << 16,
	}
}

// SetMaxFD changes the bound reported by MaxFD.
func (w *Waiter) SetMaxFD(n int) { w.maxFD = n }

// Trigger makes a pending or future Wait report fds as readable.
func (w *Waiter) Trigger(fds ...int) { w.steps <- Step{FDs: fds} }

// Fail makes a pending or future Wait return err.
func (w *Waiter) Fail(err error) { w.steps <- Step{Err: err} }

// Entered delivers a Snapshot every time Wait is entered. Snapshots are
// dropped when the channel buffer is full.
func (w *Waiter) Entered() <-chan Snapshot { return w.entered }

// History returns every Snapshot seen so far.
func (w *Waiter) History() []Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Snapshot(nil), w.history...)
}

func (w *Waiter) MaxFD() int { return w.maxFD }

func (w *Waiter) Wait(interest *api.FDSet, nfds int, ready *api.FDSet) (int, error) {
	snap := Snapshot{NFDs: nfds}
	interest.Each(func(fd int) { snap.Interest = append(snap.Interest, fd) })
	w.mu.Lock()
	w.history = append(w.history, snap)
	w.mu.Unlock()
	select {
	case w.entered <- snap:
	default:
	}

	select {
	case <-w.closed:
		return 0, api.ErrWaiterClosed
	case st := <-w.steps:
		if st.Err != nil {
			return 0, st.Err
		}
		ready.Zero()
		n := 0
		for _, fd := range st.FDs {
			if fd < nfds && interest.IsSet(fd) && !ready.IsSet(fd) {
				ready.Set(fd)
				n++
			}
		}
		return n, nil
	}
}

// Close unblocks any Wait with api.ErrWaiterClosed.
func (w *Waiter) Close() error {
	w.closeOnce.Do(func() { close(w.closed) })
	return nil
}
