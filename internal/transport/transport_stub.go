//go:build !linux
// +build !linux

// internal/transport/transport_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "github.com/momentics/cndevent/api"

// Listener is unavailable on this platform.
type Listener struct{}

// Conn is unavailable on this platform.
type Conn struct{}

// Listen returns api.ErrNotSupported.
func Listen(path string) (*Listener, error) { return nil, api.ErrNotSupported }

func (l *Listener) FD() int                 { return -1 }
func (l *Listener) Path() string            { return "" }
func (l *Listener) Accept() (*Conn, error)  { return nil, api.ErrNotSupported }
func (l *Listener) Close() error            { return nil }
func (c *Conn) FD() int                     { return -1 }
func (c *Conn) Read(p []byte) (int, error)  { return 0, api.ErrNotSupported }
func (c *Conn) Write(p []byte) (int, error) { return 0, api.ErrNotSupported }
func (c *Conn) Close() error                { return nil }
