// File: api/fdset.go
// Author: momentics <momentics@gmail.com>
//
// Growable descriptor bitmap shared by the reactor and its waiters.

package api

import "math/bits"

// FDSet is a set of non-negative descriptors. The zero value is empty and
// ready to use. FDSet is not safe for concurrent use.
type FDSet struct {
	words []uint64
}

// Set adds fd to the set. Negative descriptors are ignored.
func (s *FDSet) Set(fd int) {
	if fd < 0 {
		return
	}
	w := fd / 64
	if w >= len(s.words) {
		grown := make([]uint64, w+1)
		copy(grown, s.words)
		s.words = grown
	}
	s.words[w] |= 1 << (uint(fd) % 64)
}

// Clear removes fd from the set.
func (s *FDSet) Clear(fd int) {
	if fd < 0 || fd/64 >= len(s.words) {
		return
	}
	s.words[fd/64] &^= 1 << (uint(fd) % 64)
}

// IsSet reports whether fd is in the set.
func (s *FDSet) IsSet(fd int) bool {
	if fd < 0 || fd/64 >= len(s.words) {
		return false
	}
	return s.words[fd/64]&(1<<(uint(fd)%64)) != 0
}

// Zero empties the set, keeping its storage.
func (s *FDSet) Zero() {
	clear(s.words)
}

// Len returns the number of descriptors in the set.
func (s *FDSet) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// CopyFrom makes s an exact copy of src.
func (s *FDSet) CopyFrom(src *FDSet) {
	if cap(s.words) < len(src.words) {
		s.words = make([]uint64, len(src.words))
	}
	s.words = s.words[:len(src.words)]
	copy(s.words, src.words)
}

// Each calls fn for every descriptor in ascending order.
func (s *FDSet) Each(fn func(fd int)) {
	for i, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			fn(i*64 + b)
			w &^= 1 << uint(b)
		}
	}
}
