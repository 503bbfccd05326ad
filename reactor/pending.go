// File: reactor/pending.go
// Author: momentics <momentics@gmail.com>
//
// FIFO of fired Events awaiting handler invocation. Filled under the loop
// mutex, drained without it, and only ever touched by the loop goroutine.

package reactor

import (
	"github.com/eapache/queue"
)

type pendingQueue struct {
	q *queue.Queue
}

func newPendingQueue() *pendingQueue {
	return &pendingQueue{q: queue.New()}
}

func (p *pendingQueue) enqueue(ev *Event) {
	p.q.Add(ev)
}

func (p *pendingQueue) len() int {
	return p.q.Length()
}

// pop detaches the head, or returns nil when empty.
func (p *pendingQueue) pop() *Event {
	if p.q.Length() == 0 {
		return nil
	}
	return p.q.Remove().(*Event)
}

// drain pops and fires every queued Event in order. Each Event is detached
// before fire is called, so fire may enqueue or re-add it.
func (p *pendingQueue) drain(fire func(*Event)) int {
	n := 0
	for ev := p.pop(); ev != nil; ev = p.pop() {
		fire(ev)
		n++
	}
	return n
}
