// File: reactor/event.go
// Author: momentics <momentics@gmail.com>
//
// Event records: one registration of interest in a descriptor.

package reactor

import (
	"github.com/momentics/cndevent/api"
)

// slotNone marks an Event that is not in any watch table.
const slotNone = -1

// Event describes one registration. It is owned by the registrant, which
// must Del it before discarding or reconfiguring it.
type Event struct {
	fd         int
	persistent bool
	handler    api.Handler
	ctx        any
	// slot and owner are guarded by the owning Loop's mutex; owner is nil
	// while the Event is in no watch table.
	slot  int
	owner *watchTable
}

// NewEvent allocates and configures an Event, see Event.Set.
func NewEvent(fd int, persistent bool, h api.Handler, ctx any) (*Event, error) {
	ev := &Event{slot: slotNone}
	if err := ev.Set(fd, persistent, h, ctx); err != nil {
		return nil, err
	}
	return ev, nil
}

// Set configures an unregistered Event and switches fd to non-blocking
// mode, so a read inside the handler cannot stall the loop. A registered
// Event is left unchanged and api.ErrAlreadyRegistered is returned.
func (ev *Event) Set(fd int, persistent bool, h api.Handler, ctx any) error {
	if fd < 0 || h == nil {
		return api.ErrInvalidArgument
	}
	if ev.owner != nil {
		return api.ErrAlreadyRegistered
	}
	*ev = Event{
		fd:         fd,
		persistent: persistent,
		handler:    h,
		ctx:        ctx,
		slot:       slotNone,
	}
	return setNonblock(fd)
}

// FD returns the watched descriptor.
func (ev *Event) FD() int { return ev.fd }

// Persistent reports whether the Event survives firing.
func (ev *Event) Persistent() bool { return ev.persistent }

// Context returns the value passed to the handler.
func (ev *Event) Context() any { return ev.ctx }
