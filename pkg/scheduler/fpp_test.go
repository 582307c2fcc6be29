package scheduler

import (
	"testing"

	"github.com/cuemby/rtsim/pkg/config"
	"github.com/cuemby/rtsim/pkg/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prioJob(tk *task.Task, seq, exec, deadline, priority int) *task.Job {
	return task.NewJob(tk, seq, 0, exec, deadline, priority)
}

func TestFixedPriorityOrdering(t *testing.T) {
	tk := newTask(t, 1)
	s := NewFixedPriority(config.Default())

	a := prioJob(tk, 0, 1, 50, 2)
	b := prioJob(tk, 1, 1, 50, 0)
	c := prioJob(tk, 2, 1, 50, 2)
	d := prioJob(tk, 3, 1, 50, 1)
	for _, j := range []*task.Job{a, b, c, d} {
		s.EnqueueJob(j)
	}

	assert.Equal(t, []*task.Job{b, d, a, c}, s.Jobs())
	assert.Equal(t, 4, s.Monitor().Len())
	assert.Equal(t, "FPP", s.Name())
}

func TestFixedPriorityCancelsOverdueJobs(t *testing.T) {
	tk := newTask(t, 1)
	s := NewFixedPriority(config.Default())

	high := prioJob(tk, 0, 3, 3, 0)
	low := prioJob(tk, 1, 2, 4, 1) // latest start 2

	s.EnqueueJob(high)
	s.EnqueueJob(low)

	var ss ScheduleStat
	var ds DispatchStat
	for now := 0; now < 3; now++ {
		ss.Reset()
		require.NoError(t, s.Schedule(now, &ss))
		assert.Empty(t, ss.Cancelled, "tick %d", now)
		ds.Reset()
		s.Dispatch(now, &ds)
	}
	assert.Same(t, high, ds.Finished)
	assert.False(t, ds.DeadlineMiss)
	assert.Equal(t, 1, s.Monitor().Len())

	ss.Reset()
	require.NoError(t, s.Schedule(3, &ss))
	assert.Equal(t, []*task.Job{low}, ss.Cancelled)
	assert.False(t, s.HasPendingJobs())
	assert.Equal(t, 0, s.Monitor().Len())
}

func TestFixedPriorityExecutionReordersMonitor(t *testing.T) {
	tk := newTask(t, 1)
	s := NewFixedPriority(config.Default())

	a := prioJob(tk, 0, 3, 5, 0) // latest start 2
	b := prioJob(tk, 1, 1, 4, 1) // latest start 3
	s.EnqueueJob(a)
	s.EnqueueJob(b)
	assert.Equal(t, []*task.Job{a, b}, s.Monitor().Jobs())

	var ds DispatchStat
	s.Dispatch(0, &ds)
	s.Dispatch(1, &ds)
	assert.Equal(t, 4, a.LatestStartTime())
	assert.Equal(t, []*task.Job{b, a}, s.Monitor().Jobs())
}

func TestFixedPriorityWithoutDeadlineMissCancellations(t *testing.T) {
	tk := newTask(t, 1)
	s := NewFixedPriority(noDlMissCancellations())
	late := prioJob(tk, 0, 2, 1, 0)
	s.EnqueueJob(late)

	var ss ScheduleStat
	require.NoError(t, s.Schedule(5, &ss))
	assert.Empty(t, ss.Cancelled)
	assert.True(t, s.HasPendingJobs())
}

func TestFixedPriorityRemoveJob(t *testing.T) {
	tk := newTask(t, 1)
	s := NewNamedFixedPriority("DBP", config.Default())
	a := prioJob(tk, 0, 1, 5, 0)
	s.EnqueueJob(a)

	assert.Same(t, a, s.RemoveJob(a))
	assert.Nil(t, s.RemoveJob(a))
	assert.Equal(t, 0, s.Monitor().Len())
	assert.Equal(t, "DBP", s.Name())
}

func TestSchedulersSatisfyInterface(t *testing.T) {
	cfg := config.Default()
	for _, s := range []Scheduler{
		NewEDF(cfg),
		NewBestEffortEDF(cfg),
		NewHCEDF(cfg),
		NewWHCEDF(cfg),
		NewGMUAMK(cfg),
		NewMKU(cfg),
		NewFixedPriority(cfg),
	} {
		assert.Equal(t, cfg, s.Config())
		assert.False(t, s.HasPendingJobs())
	}
}
