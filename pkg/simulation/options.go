package simulation

import (
	"github.com/cuemby/rtsim/pkg/events"
	"github.com/cuemby/rtsim/pkg/metrics"
	"github.com/cuemby/rtsim/pkg/scheduler"
	"github.com/rs/zerolog"
)

// Observer is called at the end of every tick with the tick's statistics.
// The stats are reused by the next tick and must not be retained.
type Observer func(now int, ss *scheduler.ScheduleStat, ds *scheduler.DispatchStat)

type options struct {
	id          string
	fingerprint *uint64
	logger      *zerolog.Logger
	metrics     *metrics.Metrics
	broker      *events.Broker
	observer    Observer
	stopOnMiss  bool
}

// Option configures a Run.
type Option func(o *options)

// WithID overrides the generated run ID.
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithTaskSetFingerprint sets the task-set identity reported in the result.
// It defaults to the fingerprint of the simulated set; runs of adapted
// copies report the fingerprint of the set they were adapted from.
func WithTaskSetFingerprint(fp uint64) Option {
	return func(o *options) {
		o.fingerprint = &fp
	}
}

// WithLogger sets the parent logger. The run adds its own context fields.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithBroker(b *events.Broker) Option {
	return func(o *options) {
		o.broker = b
	}
}

func WithObserver(fn Observer) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// WithStopOnMiss ends Execute at the first failing tick.
func WithStopOnMiss(stop bool) Option {
	return func(o *options) {
		o.stopOnMiss = stop
	}
}
