// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw-descriptor unix-domain stream sockets for the daemon control channel.
// Descriptors are non-blocking and owned by the caller, so they can be
// watched by the reactor instead of the Go runtime netpoller.

package transport
