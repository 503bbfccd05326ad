// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Readiness primitive behind the reactor dispatcher: select(2), epoll(7) or a
// scripted fake.

package api

// Waiter blocks until descriptors become readable.
type Waiter interface {
	// Wait must block, without timeout, until at least one descriptor of
	// interest below nfds is readable. The readable subset is written to
	// ready (which is cleared first) and its size returned.
	// A signal interruption must be reported as ErrInterrupted, and any
	// call after Close as ErrWaiterClosed.
	Wait(interest *FDSet, nfds int, ready *FDSet) (int, error)

	// MaxFD returns the exclusive upper bound of descriptors this waiter can watch.
	MaxFD() int

	// Close must release the underlying poller resources.
	Close() error
}
