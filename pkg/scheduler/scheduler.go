package scheduler

import (
	"fmt"
	"slices"

	"github.com/cuemby/rtsim/pkg/config"
	"github.com/cuemby/rtsim/pkg/task"
)

// Scheduler decides, tick by tick, which job runs and which jobs are
// sacrificed. The driver calls EnqueueJob for new jobs, then InitStep,
// Schedule and Dispatch once per tick, in that order.
type Scheduler interface {
	Name() string
	Config() config.SchedulerConfig

	// EnqueueJob accepts a newly activated or re-admitted job.
	EnqueueJob(j *task.Job)
	// RemoveJob withdraws j without completing it. It returns nil when j is
	// not queued.
	RemoveJob(j *task.Job) *task.Job

	InitStep(now int, stat *ScheduleStat) error
	// Schedule reconciles the ready set with feasibility and records every
	// job it cancels in stat.
	Schedule(now int, stat *ScheduleStat) error
	// Dispatch executes one job for one tick. Completed jobs are removed and
	// reported to their task.
	Dispatch(now int, stat *DispatchStat) *task.Job

	HasPendingJobs() bool
	// Jobs returns the ready sequence in dispatch order.
	Jobs() []*task.Job
}

// ScheduleStat collects the jobs cancelled during one tick, in order.
type ScheduleStat struct {
	Cancelled []*task.Job
}

// Reset clears the stat for reuse.
func (s *ScheduleStat) Reset() {
	s.Cancelled = s.Cancelled[:0]
}

func (s *ScheduleStat) cancel(j *task.Job) {
	s.Cancelled = append(s.Cancelled, j)
}

// DispatchStat describes the execution of one tick.
type DispatchStat struct {
	Executed *task.Job
	Finished *task.Job
	// DeadlineMiss is set when the finished job completed after its deadline.
	DeadlineMiss bool
	Idle         bool
}

// Reset clears the stat for reuse.
func (s *DispatchStat) Reset() {
	*s = DispatchStat{}
}

// queue is the ready sequence shared by the schedulers. before reports
// whether a must run strictly ahead of b; jobs that compare equal keep
// their enqueue order.
type queue struct {
	cfg    config.SchedulerConfig
	jobs   []*task.Job
	before func(a, b *task.Job) bool
	last   *task.Job
}

func checkJob(j *task.Job) {
	if j == nil {
		panic("scheduler: nil job")
	}
	if j.Task() == nil {
		panic(fmt.Sprintf("scheduler: job %s has no owning task", j.ID()))
	}
}

func (q *queue) Config() config.SchedulerConfig {
	return q.cfg
}

func (q *queue) EnqueueJob(j *task.Job) {
	checkJob(j)
	idx := len(q.jobs)
	for i, other := range q.jobs {
		if q.before(j, other) {
			idx = i
			break
		}
	}
	q.jobs = slices.Insert(q.jobs, idx, j)
}

func (q *queue) RemoveJob(j *task.Job) *task.Job {
	if j == nil {
		panic("scheduler: nil job")
	}
	idx := slices.Index(q.jobs, j)
	if idx < 0 {
		return nil
	}
	q.jobs = slices.Delete(q.jobs, idx, idx+1)
	if q.last == j {
		q.last = nil
	}
	return j
}

func (q *queue) InitStep(now int, stat *ScheduleStat) error {
	return nil
}

func (q *queue) HasPendingJobs() bool {
	return len(q.jobs) > 0
}

func (q *queue) Jobs() []*task.Job {
	return slices.Clone(q.jobs)
}

// cancel withdraws j and records it.
func (q *queue) cancel(j *task.Job, stat *ScheduleStat) {
	if q.RemoveJob(j) != nil {
		stat.cancel(j)
	}
}

// dispatch runs the head job for one tick. executed is called after the
// execution step, before a completed job is removed.
func (q *queue) dispatch(now int, stat *DispatchStat, executed func(*task.Job)) *task.Job {
	if len(q.jobs) == 0 {
		stat.Idle = true
		q.last = nil
		return nil
	}

	j := q.jobs[0]
	if q.last != nil && q.last != j && q.last.Started() {
		q.last.Preempted()
	}
	q.last = j

	stat.Executed = j
	done := j.ExecStep(now)
	if executed != nil {
		executed(j)
	}
	if !done {
		return j
	}

	q.RemoveJob(j)
	stat.Finished = j
	stat.DeadlineMiss = !j.Task().CompletionHook(j, now+1)
	return j
}
