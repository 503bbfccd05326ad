// File: internal/logging/logging.go
// Author: momentics <momentics@gmail.com>
//
// Structured JSON logger construction for the daemon, on logiface + stumpy,
// with a level that can be changed at runtime (config hot reload).

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the logger type passed around the library packages.
type Logger = logiface.Logger[logiface.Event]

// LevelVar is a concurrency-safe, mutable log level.
type LevelVar struct {
	v atomic.Int32
}

// NewLevelVar returns a LevelVar set to level.
func NewLevelVar(level logiface.Level) *LevelVar {
	lv := &LevelVar{}
	lv.Set(level)
	return lv
}

// Level returns the current level.
func (lv *LevelVar) Level() logiface.Level { return logiface.Level(lv.v.Load()) }

// Set changes the level.
func (lv *LevelVar) Set(level logiface.Level) { lv.v.Store(int32(level)) }

// New builds a JSON logger writing to w (stderr when nil). Events above the
// current value of lv are dropped.
func New(w io.Writer, lv *LevelVar) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(w),
			stumpy.WithTimeField("ts"),
		),
		stumpy.L.WithLevel(logiface.LevelTrace),
		stumpy.L.WithModifier(logiface.ModifierFunc[*stumpy.Event](func(e *stumpy.Event) error {
			if e.Level() > lv.Level() {
				return logiface.ErrDisabled
			}
			return nil
		})),
	).Logger()
}

// ParseLevel maps a configuration string to a level.
func ParseLevel(s string) (logiface.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logiface.LevelTrace, nil
	case "debug":
		return logiface.LevelDebug, nil
	case "info", "":
		return logiface.LevelInformational, nil
	case "notice":
		return logiface.LevelNotice, nil
	case "warn", "warning":
		return logiface.LevelWarning, nil
	case "err", "error":
		return logiface.LevelError, nil
	case "off", "disabled":
		return logiface.LevelDisabled, nil
	default:
		return logiface.LevelInformational, fmt.Errorf("unknown log level %q", s)
	}
}
