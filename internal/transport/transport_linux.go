// internal/transport/transport_linux.go
//go:build linux
// +build linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux unix-domain listener and connections on raw, non-blocking descriptors.

package transport

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Listener accepts control connections.
type Listener struct {
	fd   int
	path string
}

// Listen binds a non-blocking unix stream socket at path, replacing a stale
// socket file.
func Listen(path string) (*Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("socket create: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", path, err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		_ = unix.Close(fd)
		_ = os.Remove(path)
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	return &Listener{fd: fd, path: path}, nil
}

// FD returns the listening descriptor.
func (l *Listener) FD() int { return l.fd }

// Path returns the socket path.
func (l *Listener) Path() string { return l.path }

// Accept returns the next pending connection, or ErrWouldBlock.
func (l *Listener) Accept() (*Conn, error) {
	for {
		nfd, _, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		switch {
		case err == nil:
			return &Conn{fd: nfd}, nil
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return nil, ErrWouldBlock
		default:
			return nil, fmt.Errorf("accept: %w", err)
		}
	}
}

// Close closes the socket and removes its path.
func (l *Listener) Close() error {
	err := unix.Close(l.fd)
	if rmErr := os.Remove(l.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
		err = rmErr
	}
	return err
}

// Conn is an accepted connection.
type Conn struct {
	fd int
}

// FD returns the connection descriptor.
func (c *Conn) FD() int { return c.fd }

// Read reads available bytes. It returns io.EOF when the peer closed, and
// ErrWouldBlock when nothing is buffered.
func (c *Conn) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(c.fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, ErrWouldBlock
		case err != nil:
			return 0, fmt.Errorf("read: %w", err)
		case n == 0 && len(p) > 0:
			return 0, io.EOF
		default:
			return n, nil
		}
	}
}

// Write writes p fully, or fails with ErrWouldBlock if the socket buffer fills.
func (c *Conn) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.Write(c.fd, p[written:])
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return written, ErrWouldBlock
		case err != nil:
			return written, fmt.Errorf("write: %w", err)
		}
		written += n
	}
	return written, nil
}

// Close closes the descriptor.
func (c *Conn) Close() error {
	return unix.Close(c.fd)
}
