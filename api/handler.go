// File: api/handler.go
// Package api defines the readiness Handler interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Handler is invoked when a watched descriptor becomes readable.
// ctx is the opaque value bound to the registration.
type Handler interface {
	OnReady(fd int, ctx any)
}

// HandlerFunc adapts an ordinary function to Handler.
type HandlerFunc func(fd int, ctx any)

// OnReady calls f(fd, ctx).
func (f HandlerFunc) OnReady(fd int, ctx any) { f(fd, ctx) }
