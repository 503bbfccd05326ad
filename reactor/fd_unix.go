//go:build unix

// File: reactor/fd_unix.go
// Author: momentics <momentics@gmail.com>

package reactor

import "golang.org/x/sys/unix"

// setNonblock is a variable so tests using synthetic descriptors can stub it.
var setNonblock = func(fd int) error {
	return unix.SetNonblock(fd, true)
}
