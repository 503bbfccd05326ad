// File: reactor/options.go
// Author: momentics <momentics@gmail.com>

package reactor

import (
	"github.com/joeycumines/logiface"

	"github.com/momentics/cndevent/api"
)

// DefaultMaxEvents is the watch table capacity used when WithMaxEvents is
// not given.
const DefaultMaxEvents = 32

// Metrics receives loop counters; control.MetricsRegistry implements it.
type Metrics interface {
	Add(key string, delta int64)
	Set(key string, value int64)
}

// Metric keys reported by the loop.
const (
	MetricWaits      = "reactor.waits"
	MetricRetries    = "reactor.retries"
	MetricFired      = "reactor.fired"
	MetricRegistered = "reactor.registered"
	MetricRejected   = "reactor.rejected"
)

type options struct {
	maxEvents int
	waiter    api.Waiter
	logger    *logiface.Logger[logiface.Event]
	metrics   Metrics
	bootstrap func(*Loop) error
}

// Option configures a Loop.
type Option func(*options)

// WithMaxEvents sets the fixed watch table capacity.
func WithMaxEvents(n int) Option {
	return func(o *options) { o.maxEvents = n }
}

// WithWaiter sets the readiness primitive. The Loop takes ownership and
// closes it in Close.
func WithWaiter(w api.Waiter) Option {
	return func(o *options) { o.waiter = w }
}

// WithLogger sets the structured logger; nil disables logging.
func WithLogger(l *logiface.Logger[logiface.Event]) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the counter sink.
func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithBootstrap sets the service hook run once by Init.
func WithBootstrap(fn func(*Loop) error) Option {
	return func(o *options) { o.bootstrap = fn }
}

type noopMetrics struct{}

func (noopMetrics) Add(string, int64) {}
func (noopMetrics) Set(string, int64) {}
