// File: reactor/loop.go
// Author: momentics <momentics@gmail.com>
//
// The dispatcher: snapshot the interest set, wait, move fired Events to the
// pending queue under the mutex, run handlers without it.

package reactor

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/joeycumines/logiface"

	"github.com/momentics/cndevent/api"
)

// Loop is a readiness reactor. Construct it with New.
type Loop struct {
	mu      sync.Mutex
	table   *watchTable
	pending *pendingQueue

	waiter    api.Waiter
	logger    *logiface.Logger[logiface.Event]
	metrics   Metrics
	bootstrap func(*Loop) error
	id        string

	state    atomic.Int32
	stopReq  atomic.Bool
	initOnce sync.Once
	initErr  error

	// loop goroutine only
	interest api.FDSet
	ready    api.FDSet
}

// New builds a Loop with an empty watch table. Without WithWaiter the
// select(2) waiter is used.
func New(opts ...Option) (*Loop, error) {
	o := options{maxEvents: DefaultMaxEvents}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxEvents <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "max events must be positive").
			WithContext("max_events", o.maxEvents).
			Wrap(api.ErrInvalidArgument)
	}
	if o.waiter == nil {
		w, err := NewSelectWaiter()
		if err != nil {
			return nil, err
		}
		o.waiter = w
	}
	if o.metrics == nil {
		o.metrics = noopMetrics{}
	}
	return &Loop{
		table:     newWatchTable(o.maxEvents),
		pending:   newPendingQueue(),
		waiter:    o.waiter,
		logger:    o.logger,
		metrics:   o.metrics,
		bootstrap: o.bootstrap,
		id:        uuid.NewString(),
	}, nil
}

// ID returns the loop instance id used in log lines.
func (l *Loop) ID() string { return l.id }

// Init runs the bootstrap hook once. A failure is returned, on every call, as
// an *api.Error with code api.ErrCodeBootstrap.
func (l *Loop) Init() error {
	l.initOnce.Do(func() {
		if l.bootstrap == nil {
			return
		}
		if err := l.bootstrap(l); err != nil {
			l.logger.Err().Err(err).Str("loop_id", l.id).Log("service bootstrap failed")
			l.initErr = api.NewError(api.ErrCodeBootstrap, "service bootstrap failed").
				WithContext("loop_id", l.id).
				Wrap(err)
		}
	})
	return l.initErr
}

// Add registers ev. It fails with api.ErrAlreadyRegistered if ev is
// registered, api.ErrFDOutOfRange if the waiter cannot watch its descriptor,
// and api.ErrRegistryFull if no slot is free; ev is left unchanged in every
// failure case.
func (l *Loop) Add(ev *Event) error {
	if ev == nil || ev.handler == nil {
		return api.ErrInvalidArgument
	}
	if ev.fd < 0 || ev.fd >= l.waiter.MaxFD() {
		l.metrics.Add(MetricRejected, 1)
		return api.ErrFDOutOfRange
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if ev.owner != nil {
		// here or in another Loop
		return api.ErrAlreadyRegistered
	}
	if !l.table.insert(ev) {
		l.metrics.Add(MetricRejected, 1)
		l.logger.Warning().
			Int("fd", ev.fd).
			Int("capacity", len(l.table.slots)).
			Str("loop_id", l.id).
			Log("watch table full")
		return api.NewError(api.ErrCodeResourceExhausted, "no free slot").
			WithContext("capacity", len(l.table.slots)).
			Wrap(api.ErrRegistryFull)
	}
	if err := setNonblock(ev.fd); err != nil {
		l.logger.Warning().Err(err).Int("fd", ev.fd).Log("set non-blocking failed")
	}
	l.metrics.Set(MetricRegistered, int64(l.table.count))
	l.logger.Debug().
		Int("fd", ev.fd).
		Int("slot", ev.slot).
		Int("nfds", l.table.nfds).
		Bool("persistent", ev.persistent).
		Log("event added")
	return nil
}

// Del removes ev from the watch table. It returns api.ErrNotRegistered,
// changing nothing, when ev is not registered with this Loop.
func (l *Loop) Del(ev *Event) error {
	if ev == nil {
		return api.ErrInvalidArgument
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.table.holds(ev) {
		return api.ErrNotRegistered
	}
	slot := ev.slot
	l.table.remove(ev)
	l.metrics.Set(MetricRegistered, int64(l.table.count))
	l.logger.Debug().
		Int("fd", ev.fd).
		Int("slot", slot).
		Int("nfds", l.table.nfds).
		Log("event removed")
	return nil
}

// Registered reports whether ev currently occupies a slot of this Loop.
func (l *Loop) Registered(ev *Event) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.holds(ev)
}

// Watching reports whether fd is in the interest set.
func (l *Loop) Watching(fd int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.interest.IsSet(fd)
}

// Len returns the number of registered Events.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.count
}

// Cap returns the fixed watch table capacity.
func (l *Loop) Cap() int { return len(l.table.slots) }

// NFDs returns the highest watched descriptor plus one, or 0.
func (l *Loop) NFDs() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.nfds
}

// State returns the dispatcher state.
func (l *Loop) State() State { return State(l.state.Load()) }

// Run dispatches readiness until Stop is observed, returning nil, or until
// the waiter fails with anything but api.ErrInterrupted, returning an
// *api.Error with code api.ErrCodeWaitFailed. Run must be called at most
// once; it is the only goroutine that blocks in the waiter.
func (l *Loop) Run() error {
	if !l.state.CompareAndSwap(int32(StateIdle), int32(StateWaiting)) {
		if l.State() == StateStopped {
			return api.ErrLoopStopped
		}
		return api.ErrLoopRunning
	}
	l.logger.Info().Str("loop_id", l.id).Int("capacity", len(l.table.slots)).Log("event loop started")

	for {
		if l.stopReq.Load() {
			l.state.Store(int32(StateStopped))
			l.logger.Info().Str("loop_id", l.id).Log("event loop stopped")
			return nil
		}

		nfds := l.snapshot()
		l.state.Store(int32(StateWaiting))
		n, err := l.waiter.Wait(&l.interest, nfds, &l.ready)
		l.metrics.Add(MetricWaits, 1)
		if err != nil {
			if errors.Is(err, api.ErrInterrupted) {
				l.metrics.Add(MetricRetries, 1)
				continue
			}
			l.state.Store(int32(StateStopped))
			l.logger.Err().Err(err).Str("loop_id", l.id).Int("nfds", nfds).Log("readiness wait failed")
			return api.NewError(api.ErrCodeWaitFailed, "readiness wait failed").
				WithContext("nfds", nfds).
				Wrap(err)
		}

		l.state.Store(int32(StateDispatching))
		l.collect(n)
		fired := l.pending.drain(l.fire)
		l.metrics.Add(MetricFired, int64(fired))
	}
}

// Stop asks Run to return. It is observed before the next wait, so from a
// handler it takes effect once the current batch has fired; from another
// goroutine it takes effect after the loop next wakes.
func (l *Loop) Stop() {
	l.stopReq.Store(true)
}

// Close releases the waiter. Call it after Run has returned.
func (l *Loop) Close() error {
	return l.waiter.Close()
}

// snapshot copies the interest set for the wait and returns nfds.
func (l *Loop) snapshot() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interest.CopyFrom(&l.table.interest)
	return l.table.nfds
}

// collect moves every registered Event whose descriptor is ready into the
// pending queue, in slot order, removing one-shot Events first.
func (l *Loop) collect(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.table.matches(&l.ready)

	for i := 0; i < len(l.table.slots) && remaining > 0; i++ {
		ev := l.table.slots[i]
		if ev == nil || !l.ready.IsSet(ev.fd) {
			continue
		}
		if !ev.persistent {
			l.table.remove(ev)
		}
		l.pending.enqueue(ev)
		remaining--
	}
	l.metrics.Set(MetricRegistered, int64(l.table.count))
	l.logger.Debug().Int("ready", n).Int("pending", l.pending.len()).Log("readiness collected")
}

func (l *Loop) fire(ev *Event) {
	l.logger.Trace().Int("fd", ev.fd).Log("firing event")
	ev.handler.OnReady(ev.fd, ev.ctx)
}
