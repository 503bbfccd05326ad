//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub waiters for unsupported platforms.

package reactor

import "github.com/momentics/cndevent/api"

// NewSelectWaiter returns api.ErrNotSupported on this platform.
func NewSelectWaiter() (api.Waiter, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "select waiter unavailable").Wrap(api.ErrNotSupported)
}

// NewEpollWaiter returns api.ErrNotSupported on this platform.
func NewEpollWaiter(maxEvents int) (api.Waiter, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "epoll waiter unavailable").Wrap(api.ErrNotSupported)
}
