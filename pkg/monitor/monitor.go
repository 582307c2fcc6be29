// Package monitor keeps live jobs ordered by latest start time so that
// imminent deadline misses can be found at the head of the list.
package monitor

import (
	"slices"

	"github.com/cuemby/rtsim/pkg/task"
)

// DeadlineMonitor holds non-owning references to jobs, sorted ascending by
// latest start time. Jobs with equal keys stay in insertion order.
type DeadlineMonitor struct {
	jobs []*task.Job
}

// New creates an empty deadline monitor.
func New() *DeadlineMonitor {
	return &DeadlineMonitor{}
}

// AddJob inserts j behind every job whose latest start time is not later.
func (m *DeadlineMonitor) AddJob(j *task.Job) {
	if j == nil {
		panic("deadline monitor: nil job")
	}
	key := j.LatestStartTime()
	idx := len(m.jobs)
	for i, other := range m.jobs {
		if other.LatestStartTime() > key {
			idx = i
			break
		}
	}
	m.jobs = slices.Insert(m.jobs, idx, j)
}

// Check removes and returns the head job if it can no longer start in time
// at now. Call repeatedly to drain every such job.
func (m *DeadlineMonitor) Check(now int) *task.Job {
	if len(m.jobs) == 0 || m.jobs[0].LatestStartTime() >= now {
		return nil
	}
	j := m.jobs[0]
	m.jobs = slices.Delete(m.jobs, 0, 1)
	return j
}

// JobExecuted restores the order after j executed. Execution only moves the
// latest start time later, so j is moved towards the tail only.
func (m *DeadlineMonitor) JobExecuted(j *task.Job) *task.Job {
	if j == nil {
		panic("deadline monitor: nil job")
	}
	idx := m.indexOf(j)
	if idx < 0 {
		return nil
	}
	key := j.LatestStartTime()
	end := idx + 1
	for end < len(m.jobs) && m.jobs[end].LatestStartTime() <= key {
		end++
	}
	if end > idx+1 {
		copy(m.jobs[idx:end-1], m.jobs[idx+1:end])
		m.jobs[end-1] = j
	}
	return j
}

// RemoveJob removes j, returning nil when it is not present.
func (m *DeadlineMonitor) RemoveJob(j *task.Job) *task.Job {
	if j == nil {
		panic("deadline monitor: nil job")
	}
	idx := m.indexOf(j)
	if idx < 0 {
		return nil
	}
	m.jobs = slices.Delete(m.jobs, idx, idx+1)
	return j
}

func (m *DeadlineMonitor) indexOf(j *task.Job) int {
	return slices.Index(m.jobs, j)
}

// Len returns the number of monitored jobs.
func (m *DeadlineMonitor) Len() int {
	return len(m.jobs)
}

// Jobs returns the monitored jobs in order.
func (m *DeadlineMonitor) Jobs() []*task.Job {
	return slices.Clone(m.jobs)
}
