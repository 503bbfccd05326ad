//go:build !unix

// File: reactor/fd_other.go
// Author: momentics <momentics@gmail.com>

package reactor

var setNonblock = func(fd int) error { return nil }
