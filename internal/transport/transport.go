// File: internal/transport/transport.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "errors"

// ErrWouldBlock reports that a non-blocking operation has nothing to do yet.
var ErrWouldBlock = errors.New("transport: operation would block")

const listenBacklog = 16
