//go:build !linux
// +build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>

package affinity

import "github.com/momentics/cndevent/api"

func setAffinityPlatform(int) error {
	return api.ErrNotSupported
}
