// Package registry maps scheduler keys to the allocators that build a
// scheduler, adapt tasks to the scheduler's task model and create a run.
package registry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cuemby/rtsim/pkg/config"
	"github.com/cuemby/rtsim/pkg/scheduler"
	"github.com/cuemby/rtsim/pkg/simulation"
	"github.com/cuemby/rtsim/pkg/task"
)

var (
	ErrUnknownScheduler = errors.New("unknown scheduler")
	ErrNotImplemented   = errors.New("not implemented")
)

// Entry holds the allocators of one scheduler.
type Entry struct {
	Description string
	// NewScheduler builds the scheduler. A nil NewScheduler marks a
	// scheduler that is known but not available.
	NewScheduler func(cfg config.SchedulerConfig) scheduler.Scheduler
	// AdaptTask returns a fresh copy of t for this scheduler.
	AdaptTask func(t *task.Task) (*task.Task, error)
	NewRun    func(set *task.Set, s scheduler.Scheduler, opts ...simulation.Option) *simulation.Run
}

// Registry is a set of named scheduler entries. It is built once and
// passed to whatever needs to resolve scheduler keys.
type Registry struct {
	entries map[string]Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds or replaces key. Missing allocators default to a plain
// task clone and simulation.NewRun.
func (r *Registry) Register(key string, e Entry) {
	if e.AdaptTask == nil {
		e.AdaptTask = cloneTask
	}
	if e.NewRun == nil {
		e.NewRun = simulation.NewRun
	}
	r.entries[key] = e
}

// Lookup returns the entry for key.
func (r *Registry) Lookup(key string) (Entry, error) {
	e, ok := r.entries[key]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownScheduler, key)
	}
	if e.NewScheduler == nil {
		return Entry{}, fmt.Errorf("scheduler %q: %w", key, ErrNotImplemented)
	}
	return e, nil
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Describe returns the description of key and whether it can be built.
func (r *Registry) Describe(key string) (string, bool) {
	e, ok := r.entries[key]
	return e.Description, ok && e.NewScheduler != nil
}

// NewRun builds a run of set under the scheduler registered as key. The
// set is adapted task by task, so set itself is left untouched; the result
// of the run carries the fingerprint of set.
func (r *Registry) NewRun(key string, set *task.Set, cfg config.SchedulerConfig, opts ...simulation.Option) (*simulation.Run, error) {
	e, err := r.Lookup(key)
	if err != nil {
		return nil, err
	}
	adapted, err := set.Adapt(e.AdaptTask)
	if err != nil {
		return nil, fmt.Errorf("scheduler %q: %w", key, err)
	}
	opts = append([]simulation.Option{simulation.WithTaskSetFingerprint(set.Fingerprint())}, opts...)
	return e.NewRun(adapted, e.NewScheduler(cfg), opts...), nil
}

func cloneTask(t *task.Task) (*task.Task, error) {
	return t.Clone(), nil
}

func withModel(m task.Model) func(t *task.Task) (*task.Task, error) {
	return func(t *task.Task) (*task.Task, error) {
		return t.WithModel(m)
	}
}

func overload(fn func(config.SchedulerConfig) *scheduler.Overload) func(config.SchedulerConfig) scheduler.Scheduler {
	return func(cfg config.SchedulerConfig) scheduler.Scheduler {
		return fn(cfg)
	}
}

// Default returns the registry of every built-in scheduler.
func Default() *Registry {
	r := New()
	r.Register("EDF", Entry{
		Description:  "earliest deadline first",
		NewScheduler: func(cfg config.SchedulerConfig) scheduler.Scheduler { return scheduler.NewEDF(cfg) },
	})
	r.Register("BE-EDF", Entry{
		Description:  "best-effort EDF, sheds the job with the lowest utility density",
		NewScheduler: overload(scheduler.NewBestEffortEDF),
	})
	r.Register("HCEDF", Entry{
		Description:  "history-cognisant EDF",
		NewScheduler: overload(scheduler.NewHCEDF),
	})
	r.Register("WHCEDF", Entry{
		Description:  "weighted history-cognisant EDF",
		NewScheduler: overload(scheduler.NewWHCEDF),
	})
	r.Register("GMUA-MK", Entry{
		Description:  "generic utility accrual for (m,k)-firm tasks",
		NewScheduler: overload(scheduler.NewGMUAMK),
	})
	r.Register("MKU", Entry{
		Description:  "(m,k) utility EDF",
		NewScheduler: overload(scheduler.NewMKU),
	})
	r.Register("DMU", Entry{
		Description:  "(m,k) utility EDF over distance-tracked tasks",
		NewScheduler: overload(scheduler.NewMKU),
		AdaptTask:    withModel(task.ModelDistance),
	})
	r.Register("FPP", Entry{
		Description:  "fixed-priority preemptive",
		NewScheduler: func(cfg config.SchedulerConfig) scheduler.Scheduler { return scheduler.NewFixedPriority(cfg) },
	})
	r.Register("DBP", Entry{
		Description: "distance-based priority",
		NewScheduler: func(cfg config.SchedulerConfig) scheduler.Scheduler {
			return scheduler.NewNamedFixedPriority("DBP", cfg)
		},
		AdaptTask: withModel(task.ModelDistance),
	})
	r.Register("MKP", Entry{
		Description: "fixed priority over static (m,k) patterns",
		NewScheduler: func(cfg config.SchedulerConfig) scheduler.Scheduler {
			return scheduler.NewNamedFixedPriority("MKP", cfg)
		},
		AdaptTask: withModel(task.ModelMKPattern),
	})
	r.Register("GDPA", Entry{Description: "guaranteed dynamic priority assignment"})
	r.Register("GDPA-S", Entry{Description: "guaranteed dynamic priority assignment, simplified"})
	return r
}
