package scheduler

import (
	"github.com/cuemby/rtsim/pkg/config"
	"github.com/cuemby/rtsim/pkg/monitor"
	"github.com/cuemby/rtsim/pkg/task"
)

// FixedPriority is a preemptive fixed-priority scheduler. Priority 0 is the
// most important; equal priorities run in enqueue order. Overdue jobs are
// found through a deadline monitor.
type FixedPriority struct {
	queue
	name    string
	monitor *monitor.DeadlineMonitor
}

// NewFixedPriority creates a fixed-priority preemptive scheduler.
func NewFixedPriority(cfg config.SchedulerConfig) *FixedPriority {
	return NewNamedFixedPriority("FPP", cfg)
}

// NewNamedFixedPriority creates a fixed-priority scheduler reported under
// name, for task models that derive job priorities themselves.
func NewNamedFixedPriority(name string, cfg config.SchedulerConfig) *FixedPriority {
	return &FixedPriority{
		queue: queue{
			cfg: cfg,
			before: func(a, b *task.Job) bool {
				return a.Priority() < b.Priority()
			},
		},
		name:    name,
		monitor: monitor.New(),
	}
}

func (s *FixedPriority) Name() string { return s.name }

func (s *FixedPriority) EnqueueJob(j *task.Job) {
	s.queue.EnqueueJob(j)
	s.monitor.AddJob(j)
}

func (s *FixedPriority) RemoveJob(j *task.Job) *task.Job {
	if s.queue.RemoveJob(j) == nil {
		return nil
	}
	s.monitor.RemoveJob(j)
	return j
}

func (s *FixedPriority) Schedule(now int, stat *ScheduleStat) error {
	if !s.cfg.DlMissCancellations {
		return nil
	}
	for j := s.monitor.Check(now); j != nil; j = s.monitor.Check(now) {
		s.cancel(j, stat)
	}
	return nil
}

func (s *FixedPriority) Dispatch(now int, stat *DispatchStat) *task.Job {
	j := s.dispatch(now, stat, func(j *task.Job) {
		s.monitor.JobExecuted(j)
	})
	if stat.Finished != nil {
		s.monitor.RemoveJob(stat.Finished)
	}
	return j
}

// Monitor exposes the deadline monitor for inspection.
func (s *FixedPriority) Monitor() *monitor.DeadlineMonitor {
	return s.monitor
}
