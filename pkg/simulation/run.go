package simulation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cuemby/rtsim/pkg/events"
	"github.com/cuemby/rtsim/pkg/log"
	"github.com/cuemby/rtsim/pkg/metrics"
	"github.com/cuemby/rtsim/pkg/scheduler"
	"github.com/cuemby/rtsim/pkg/task"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrTaskSetMismatch is returned when a duplicate is created for a task
	// set other than the one its shared result was computed for.
	ErrTaskSetMismatch = errors.New("task set mismatch")
	// ErrIndexOutOfRange is returned for a handle outside a harness.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrFinished is returned when stepping a run that already produced its result.
	ErrFinished = errors.New("run already finished")
)

// Run drives one task set through one scheduler, one tick at a time. It
// owns the task set and the scheduler for its lifetime and is not safe for
// concurrent use.
type Run struct {
	id     string
	set    *task.Set
	sched  scheduler.Scheduler
	opts   options
	logger zerolog.Logger

	now      int
	ss       scheduler.ScheduleStat
	ds       scheduler.DispatchStat
	counters Counters
	failedAt int
	result   *Result
}

// NewRun creates a run. set and s must not be shared with another run.
func NewRun(set *task.Set, s scheduler.Scheduler, opts ...Option) *Run {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.New().String()
	}

	parent := log.WithComponent("simulation")
	if o.logger != nil {
		parent = o.logger.With().Str("component", "simulation").Logger()
	}

	return &Run{
		id:       o.id,
		set:      set,
		sched:    s,
		opts:     o,
		logger:   log.WithScheduler(log.WithRunID(parent, o.id), s.Name()),
		failedAt: -1,
	}
}

func (r *Run) ID() string                     { return r.id }
func (r *Run) TaskSet() *task.Set             { return r.set }
func (r *Run) Scheduler() scheduler.Scheduler { return r.sched }
func (r *Run) SchedulerName() string          { return r.sched.Name() }
func (r *Run) Now() int                       { return r.now }
func (r *Run) Counters() Counters             { return r.counters }

// Failed reports whether a failing tick has been observed.
func (r *Run) Failed() bool {
	return r.failedAt >= 0
}

// Step simulates the tick at Now and advances the clock. New jobs are
// released first, then the scheduler reconciles the ready set, then one
// job executes.
func (r *Run) Step() error {
	if r.result != nil {
		return ErrFinished
	}
	now := r.now

	for _, t := range r.set.Tasks {
		if j := t.Spawn(now); j != nil {
			r.sched.EnqueueJob(j)
			r.counters.Released++
			if m := r.opts.metrics; m != nil {
				m.JobsReleased.WithLabelValues(r.sched.Name()).Inc()
			}
			r.publish(events.EventJobReleased, now, j, "")
		}
	}

	r.ss.Reset()
	if err := r.sched.InitStep(now, &r.ss); err != nil {
		return fmt.Errorf("init step at %d: %w", now, err)
	}
	if err := r.sched.Schedule(now, &r.ss); err != nil {
		return fmt.Errorf("schedule at %d: %w", now, err)
	}
	for _, j := range r.ss.Cancelled {
		r.cancelled(now, j)
	}

	r.ds.Reset()
	r.sched.Dispatch(now, &r.ds)
	if r.ds.Idle {
		r.counters.Idle++
	}
	if j := r.ds.Finished; j != nil {
		r.finished(now, j, r.ds.DeadlineMiss)
	}

	r.counters.Ticks++
	if m := r.opts.metrics; m != nil {
		name := r.sched.Name()
		m.Ticks.WithLabelValues(name).Inc()
		if r.ds.Idle {
			m.IdleTicks.WithLabelValues(name).Inc()
		}
	}
	if r.opts.observer != nil {
		r.opts.observer(now, &r.ss, &r.ds)
	}
	r.now++
	return nil
}

func (r *Run) cancelled(now int, j *task.Job) {
	t := j.Task()
	t.CancelHook(j)
	r.counters.Cancelled++
	r.counters.Preemptions += j.PreemptionCount()

	logger := log.WithTaskID(r.logger, t.ID())
	logger.Debug().
		Int("tick", now).
		Str("job", j.ID().String()).
		Msg("Job cancelled")
	r.publish(events.EventJobCancelled, now, j, "")
	if m := r.opts.metrics; m != nil {
		m.JobsCancelled.WithLabelValues(r.sched.Name()).Inc()
	}
	r.checkFailure(now, t)
}

func (r *Run) finished(now int, j *task.Job, miss bool) {
	t := j.Task()
	r.counters.Completed++
	r.counters.Preemptions += j.PreemptionCount()
	if m := r.opts.metrics; m != nil {
		m.JobsCompleted.WithLabelValues(r.sched.Name()).Inc()
	}

	if !miss {
		r.publish(events.EventJobCompleted, now, j, "")
		return
	}

	r.counters.DeadlineMisses++
	logger := log.WithTaskID(r.logger, t.ID())
	logger.Debug().
		Int("tick", now).
		Str("job", j.ID().String()).
		Int("deadline", j.AbsoluteDeadline()).
		Msg("Deadline missed")
	r.publish(events.EventJobDeadlineMissed, now, j, "")
	if m := r.opts.metrics; m != nil {
		m.DeadlineMisses.WithLabelValues(r.sched.Name()).Inc()
	}
	r.checkFailure(now, t)
}

// checkFailure records the first failing tick. A lost job fails the run
// unless its task tolerates losses under (m,k) constraints, in which case
// only a dynamic failure counts.
func (r *Run) checkFailure(now int, t *task.Task) {
	if r.failedAt >= 0 {
		return
	}
	if t.Model().IsMK() && !t.Failing() {
		return
	}
	r.failedAt = now
}

// Execute runs until cycles ticks have been simulated, the context is
// done, or, with WithStopOnMiss, the first failing tick. The returned
// result is also kept by the run and Execute may not be called again.
func (r *Run) Execute(ctx context.Context, cycles int) (*Result, error) {
	if r.result != nil {
		return nil, ErrFinished
	}
	start := time.Now()
	timer := metrics.NewTimer()
	r.logger.Info().
		Str("taskset", r.set.Name).
		Int("tasks", len(r.set.Tasks)).
		Int("cycles", cycles).
		Msg("Run started")
	r.publish(events.EventRunStarted, r.now, nil, "")

	exit := ExitCompleted
	for r.now < cycles {
		if err := ctx.Err(); err != nil {
			exit = ExitAborted
			break
		}
		if err := r.Step(); err != nil {
			return nil, err
		}
		if r.opts.stopOnMiss && r.Failed() {
			break
		}
	}
	if exit == ExitCompleted && r.Failed() {
		exit = ExitDeadlineMiss
	}

	res := r.buildResult(exit, start, timer.Duration())
	r.result = res

	if m := r.opts.metrics; m != nil {
		m.RunsTotal.WithLabelValues(res.Scheduler, string(res.Exit)).Inc()
		timer.ObserveDurationVec(m.RunDuration, res.Scheduler)
	}
	r.logger.Info().
		Str("exit", string(res.Exit)).
		Int("failed_at", res.FailedAt).
		Int("completed", res.Counters.Completed).
		Int("cancelled", res.Counters.Cancelled).
		Int("deadline_misses", res.Counters.DeadlineMisses).
		Dur("duration", res.Duration).
		Msg("Run finished")
	r.publish(events.EventRunFinished, r.now, nil, string(res.Exit))

	if exit == ExitAborted {
		return res, ctx.Err()
	}
	return res, nil
}

// Result returns the result of Execute, or nil while the run is live.
func (r *Run) Result() *Result {
	return r.result
}

func (r *Run) buildResult(exit ExitCondition, start time.Time, elapsed time.Duration) *Result {
	fp := r.set.Fingerprint()
	if r.opts.fingerprint != nil {
		fp = *r.opts.fingerprint
	}
	res := &Result{
		ID:          r.id,
		Scheduler:   r.sched.Name(),
		TaskSet:     r.set.Name,
		Fingerprint: fp,
		Exit:        exit,
		FailedAt:    r.failedAt,
		Cycles:      r.now,
		Counters:    r.counters,
		Tasks:       make([]TaskResult, 0, len(r.set.Tasks)),
		StartedAt:   start,
		Duration:    elapsed,
	}
	for _, t := range r.set.Tasks {
		res.Tasks = append(res.Tasks, TaskResult{
			ID:      t.ID(),
			Name:    t.Name(),
			Model:   t.Model(),
			Stats:   t.Stats(),
			History: t.History(),
			Utility: t.Aggregator().CurrentUtility(),
		})
	}
	return res
}

func (r *Run) publish(typ events.EventType, now int, j *task.Job, message string) {
	if r.opts.broker == nil {
		return
	}
	ev := &events.Event{
		RunID:    r.id,
		Type:     typ,
		Tick:     now,
		Message:  message,
		Metadata: map[string]string{"scheduler": r.sched.Name()},
	}
	if j != nil {
		ev.Metadata["task"] = strconv.Itoa(j.Task().ID())
		ev.Metadata["job"] = j.ID().String()
	}
	r.opts.broker.Publish(ev)
}
