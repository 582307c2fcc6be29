package scheduler

import (
	"github.com/cuemby/rtsim/pkg/config"
	"github.com/cuemby/rtsim/pkg/task"
)

// EDF keeps the ready sequence sorted by absolute deadline and always runs
// the head. With DlMissCancellations set, jobs that can no longer finish in
// time are cancelled during Schedule.
type EDF struct {
	queue
}

// NewEDF creates an earliest-deadline-first scheduler.
func NewEDF(cfg config.SchedulerConfig) *EDF {
	return &EDF{queue: queue{
		cfg: cfg,
		before: func(a, b *task.Job) bool {
			return a.AbsoluteDeadline() < b.AbsoluteDeadline()
		},
	}}
}

func (s *EDF) Name() string { return "EDF" }

func (s *EDF) Schedule(now int, stat *ScheduleStat) error {
	if s.cfg.DlMissCancellations {
		s.cancelMisses(now, stat)
	}
	return nil
}

func (s *EDF) cancelMisses(now int, stat *ScheduleStat) {
	for _, j := range s.Jobs() {
		if !j.IsFeasible(now) {
			s.cancel(j, stat)
		}
	}
}

func (s *EDF) Dispatch(now int, stat *DispatchStat) *task.Job {
	return s.dispatch(now, stat, nil)
}

// CheckSchedule runs the sequence back to back from now and returns the
// first job that would complete after its deadline, or nil when every job
// finishes in time.
func (s *EDF) CheckSchedule(now int) *task.Job {
	t := now
	for _, j := range s.jobs {
		t += j.RemainingExecutionTime()
		if t > j.AbsoluteDeadline() {
			return j
		}
	}
	return nil
}
