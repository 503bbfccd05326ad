// File: reactor/registry.go
// Author: momentics <momentics@gmail.com>
//
// Fixed-capacity watch table and the interest set derived from it.
// All methods require the owning Loop's mutex.

package reactor

import (
	"github.com/momentics/cndevent/api"
)

type watchTable struct {
	slots    []*Event
	interest api.FDSet
	// refs counts live registrations per descriptor; several Events may
	// watch the same descriptor.
	refs  map[int]int
	nfds  int
	count int
}

func newWatchTable(capacity int) *watchTable {
	return &watchTable{
		slots: make([]*Event, capacity),
		refs:  make(map[int]int, capacity),
	}
}

// holds reports whether ev occupies the slot it claims.
func (t *watchTable) holds(ev *Event) bool {
	return ev.owner == t && t.slots[ev.slot] == ev
}

// insert places ev in the lowest free slot. It returns false, leaving ev
// untouched, when the table is full.
func (t *watchTable) insert(ev *Event) bool {
	for i, cur := range t.slots {
		if cur != nil {
			continue
		}
		t.slots[i] = ev
		ev.slot = i
		ev.owner = t
		t.count++
		t.refs[ev.fd]++
		t.interest.Set(ev.fd)
		if ev.fd >= t.nfds {
			t.nfds = ev.fd + 1
		}
		return true
	}
	return false
}

// remove clears the slot held by ev, which must satisfy holds.
func (t *watchTable) remove(ev *Event) {
	t.slots[ev.slot] = nil
	ev.slot = slotNone
	ev.owner = nil
	t.count--

	fd := ev.fd
	if t.refs[fd]--; t.refs[fd] > 0 {
		return
	}
	delete(t.refs, fd)
	t.interest.Clear(fd)
	if fd+1 == t.nfds {
		t.recomputeNFDs()
	}
}

func (t *watchTable) recomputeNFDs() {
	n := 0
	for _, ev := range t.slots {
		if ev != nil && ev.fd+1 > n {
			n = ev.fd + 1
		}
	}
	t.nfds = n
}

// matches returns how many registrations watch a descriptor in ready.
func (t *watchTable) matches(ready *api.FDSet) int {
	n := 0
	ready.Each(func(fd int) {
		n += t.refs[fd]
	})
	return n
}
