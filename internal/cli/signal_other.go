// File: internal/cli/signal_other.go
// Author: momentics <momentics@gmail.com>

//go:build !linux
// +build !linux

package cli

import (
	"os"

	"github.com/momentics/cndevent/api"
	"github.com/momentics/cndevent/internal/logging"
	"github.com/momentics/cndevent/reactor"
)

type signalPipe struct{}

func installSignalPipe(*reactor.Loop, *logging.Logger, ...os.Signal) (*signalPipe, error) {
	return nil, api.ErrNotSupported
}

func (sp *signalPipe) Close() error { return nil }
