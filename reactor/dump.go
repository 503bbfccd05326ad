// File: reactor/dump.go
// Author: momentics <momentics@gmail.com>
//
// Diagnostic listing of the watch table. No format stability is promised.

package reactor

import (
	"fmt"
	"io"
)

// WatchEntry is one occupied slot.
type WatchEntry struct {
	Slot       int  `json:"slot"`
	FD         int  `json:"fd"`
	Persistent bool `json:"persistent"`
}

// Snapshot returns the occupied slots in slot order.
func (l *Loop) Snapshot() []WatchEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]WatchEntry, 0, l.table.count)
	for i, ev := range l.table.slots {
		if ev == nil {
			continue
		}
		out = append(out, WatchEntry{Slot: i, FD: ev.fd, Persistent: ev.persistent})
	}
	return out
}

// Dump writes the watch table to w and logs each entry at debug level.
func (l *Loop) Dump(w io.Writer) error {
	entries := l.Snapshot()
	if _, err := fmt.Fprintf(w, "watch table: %d/%d nfds=%d\n", len(entries), l.Cap(), l.NFDs()); err != nil {
		return err
	}
	for _, e := range entries {
		l.logger.Debug().Int("slot", e.Slot).Int("fd", e.FD).Log("watch table entry")
		if _, err := fmt.Fprintf(w, "slot=%d fd=%d persistent=%t\n", e.Slot, e.FD, e.Persistent); err != nil {
			return err
		}
	}
	return nil
}
