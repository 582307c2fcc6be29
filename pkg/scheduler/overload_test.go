package scheduler

import (
	"math"
	"testing"

	"github.com/cuemby/rtsim/pkg/config"
	"github.com/cuemby/rtsim/pkg/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schedule(t *testing.T, s Scheduler, jobs ...*task.Job) []*task.Job {
	t.Helper()
	for _, j := range jobs {
		s.EnqueueJob(j)
	}
	var ss ScheduleStat
	require.NoError(t, s.Schedule(0, &ss))
	return ss.Cancelled
}

func TestComparison(t *testing.T) {
	assert.True(t, math.IsInf(Min.Seed(), 1))
	assert.True(t, math.IsInf(Max.Seed(), -1))
	assert.True(t, Min.Better(Min.Seed(), 5))
	assert.True(t, Max.Better(Max.Seed(), -5))
	assert.True(t, Min.Better(2, 1))
	assert.False(t, Min.Better(1, 1))
	assert.True(t, Max.Better(1, 2))
	assert.False(t, Max.Better(2, 2))
	assert.Equal(t, "min", Min.String())
	assert.Equal(t, "max", Max.String())
}

func TestBestEffortCancelsLowestDensityAheadOfMiss(t *testing.T) {
	j1 := job(newTask(t, 1), 0, 1, 3) // density 1
	j2 := job(newTask(t, 2), 0, 2, 4) // density 0.5
	j3 := job(newTask(t, 3), 0, 3, 5) // first to miss

	s := NewBestEffortEDF(config.Default())
	for _, j := range []*task.Job{j1, j2, j3} {
		s.EnqueueJob(j)
	}
	require.Same(t, j3, s.CheckSchedule(0))
	assert.Equal(t, 1.0, s.CalcValue(0, j1))
	assert.Equal(t, 0.5, s.CalcValue(1, j2))

	var ss ScheduleStat
	require.NoError(t, s.Schedule(0, &ss))
	assert.Equal(t, []*task.Job{j2}, ss.Cancelled)
	assert.Nil(t, s.CheckSchedule(0))
	assert.Equal(t, "BE-EDF", s.Name())
}

func TestStartedJobsAreNotCandidates(t *testing.T) {
	build := func() (*task.Job, *task.Job, *task.Job) {
		j1 := job(newTask(t, 1), 0, 1, 3)
		j2 := started(job(newTask(t, 2), 0, 3, 4), 1) // density 1/3, extremal
		j3 := job(newTask(t, 3), 0, 3, 5)
		return j1, j2, j3
	}

	j1, j2, j3 := build()
	cancelled := schedule(t, NewBestEffortEDF(config.Default()), j1, j2, j3)
	assert.Equal(t, []*task.Job{j2}, cancelled)

	j1, j2, j3 = build()
	s := NewBestEffortEDF(noExecCancellations())
	assert.False(t, s.IsCancelCandidate(j2, 0))
	assert.True(t, s.IsCancelCandidate(j1, 0))
	cancelled = schedule(t, s, j1, j2, j3)
	assert.Equal(t, []*task.Job{j1}, cancelled)
}

func TestMissJobIsLastResort(t *testing.T) {
	j1 := started(job(newTask(t, 1), 0, 2, 3), 1)
	j2 := started(job(newTask(t, 2), 0, 3, 4), 1)
	j3 := job(newTask(t, 3), 0, 3, 5)

	s := NewBestEffortEDF(noExecCancellations())
	cancelled := schedule(t, s, j1, j2, j3)
	assert.Equal(t, []*task.Job{j3}, cancelled)
	assert.Nil(t, s.CheckSchedule(0))
}

func TestResolutionGivesUpWithoutCandidates(t *testing.T) {
	j1 := started(job(newTask(t, 1), 0, 3, 2), 1)
	j2 := started(job(newTask(t, 2), 0, 3, 3), 1)

	s := NewBestEffortEDF(noExecCancellations())
	cancelled := schedule(t, s, j1, j2)
	assert.Empty(t, cancelled)
	assert.Same(t, j2, s.CheckSchedule(0), "the schedule stays infeasible")
	assert.Len(t, s.Jobs(), 2)
}

func TestResolutionCancelsRepeatedly(t *testing.T) {
	tasks := []*task.Task{newTask(t, 1), newTask(t, 2), newTask(t, 3), newTask(t, 4)}
	j1 := job(tasks[0], 0, 2, 2)
	j2 := job(tasks[1], 0, 2, 3)
	j3 := job(tasks[2], 0, 2, 4)
	j4 := job(tasks[3], 0, 2, 5)

	s := NewBestEffortEDF(config.Default())
	cancelled := schedule(t, s, j1, j2, j3, j4)

	require.Len(t, cancelled, 2)
	assert.Nil(t, s.CheckSchedule(0))
	assert.Len(t, s.Jobs(), 2)
}

func historyTask(t *testing.T, id int, outcomes ...bool) *task.Task {
	tk := newTask(t, id)
	for i, ok := range outcomes {
		j := task.NewJob(tk, 100+i, 0, 1, 10, 0)
		if ok {
			j.ExecStep(0)
			tk.CompletionHook(j, 1)
		} else {
			tk.CancelHook(j)
		}
	}
	return tk
}

func TestHistoryCognisantPolicies(t *testing.T) {
	build := func() (*task.Job, *task.Job, *task.Job) {
		j1 := job(historyTask(t, 1, true, true), 0, 1, 3)  // history 1.0, remaining 1
		j2 := job(historyTask(t, 2, true, false), 0, 4, 6) // history 2/3, remaining 4
		j3 := job(newTask(t, 3), 0, 2, 6)
		return j1, j2, j3
	}

	j1, j2, j3 := build()
	hc := NewHCEDF(config.Default())
	cancelled := schedule(t, hc, j1, j2, j3)
	assert.Equal(t, []*task.Job{j2}, cancelled)
	assert.InDelta(t, 1.0, hc.CalcValue(0, j1), 1e-12)

	j1, j2, j3 = build()
	whc := NewWHCEDF(config.Default())
	cancelled = schedule(t, whc, j1, j2, j3)
	assert.Equal(t, []*task.Job{j1}, cancelled)
	assert.InDelta(t, 2.0/3.0, whc.CalcValue(1, j2), 1e-12)

	assert.Equal(t, Max, hc.Policy().Comparison)
	assert.Equal(t, "WHCEDF", whc.Name())
}

func TestGMUAMKRequiresValueOfOne(t *testing.T) {
	j1 := job(newMKTask(t, 1, 1, 1), 0, 1, 2) // distance 1, value 1
	j2 := job(newMKTask(t, 2, 1, 2), 0, 1, 2) // distance 2, value 0.5
	j3 := job(newMKTask(t, 3, 1, 1), 0, 1, 2)

	s := NewGMUAMK(config.Default())
	assert.Equal(t, 0.5, s.CalcValue(1, j2))
	cancelled := schedule(t, s, j1, j2, j3)
	assert.Equal(t, []*task.Job{j1}, cancelled)

	// the miss job is considered, but completing late it is worth nothing
	k1 := job(newMKTask(t, 4, 1, 2), 0, 1, 1)
	k2 := job(newMKTask(t, 5, 1, 2), 0, 1, 1)
	s = NewGMUAMK(config.Default())
	assert.Empty(t, schedule(t, s, k1, k2))
	assert.Same(t, k2, s.CheckSchedule(0))
}

func TestMKUtilityPrefersTaskWithMostSlack(t *testing.T) {
	build := func() (*task.Job, *task.Job, *task.Job) {
		j1 := job(newMKTask(t, 1, 2, 3), 0, 2, 4) // fail value 1
		j2 := job(newMKTask(t, 2, 1, 3), 0, 2, 4) // fail value 2
		j3 := job(newMKTask(t, 3, 3, 3), 0, 2, 4) // fail value 2/3
		return j1, j2, j3
	}

	j1, j2, j3 := build()
	s := NewMKU(config.Default())
	assert.Equal(t, 2.0, s.CalcValue(0, j2))
	cancelled := schedule(t, s, j1, j2, j3)
	assert.Equal(t, []*task.Job{j2}, cancelled)

	j1, j2, j3 = build()
	started(j2, 1)
	s = NewMKU(noExecCancellations())
	assert.Equal(t, 0.0, s.CalcValue(0, j2))
	cancelled = schedule(t, s, j1, j2, j3)
	assert.Equal(t, []*task.Job{j1}, cancelled)
}

func TestMKUtilityLeavesTightTasksAlone(t *testing.T) {
	j1 := job(newMKTask(t, 1, 3, 3), 0, 1, 1)
	j2 := job(newMKTask(t, 2, 3, 3), 0, 1, 1)

	s := NewMKU(config.Default())
	assert.Empty(t, schedule(t, s, j1, j2))
}

func TestOverloadKeepsDeadlineMissCancellations(t *testing.T) {
	tk := newTask(t, 1)
	doomed := job(tk, 0, 5, 3)

	s := NewBestEffortEDF(config.Default())
	assert.Equal(t, []*task.Job{doomed}, schedule(t, s, doomed))

	s = NewBestEffortEDF(noDlMissCancellations())
	doomed = job(tk, 1, 5, 3)
	assert.Equal(t, []*task.Job{doomed}, schedule(t, s, doomed), "the overload loop still sheds it")
}

func TestDeadlineMissCancellationIgnoresExecCancellations(t *testing.T) {
	bothOff := noExecCancellations()
	bothOff.DlMissCancellations = false

	tests := []struct {
		name      string
		cfg       config.SchedulerConfig
		cancelled bool
	}{
		{name: "deadline miss cancellations on", cfg: noExecCancellations(), cancelled: true},
		{name: "both off", cfg: bothOff, cancelled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := newTask(t, 1)
			// one tick in: 4 remaining, latest start 0
			running := started(job(tk, 0, 5, 4), 1)
			require.True(t, running.Started())

			s := NewBestEffortEDF(tt.cfg)
			s.EnqueueJob(running)
			var ss ScheduleStat
			require.NoError(t, s.Schedule(1, &ss))

			if tt.cancelled {
				assert.Equal(t, []*task.Job{running}, ss.Cancelled)
				assert.Empty(t, s.Jobs())
			} else {
				assert.Empty(t, ss.Cancelled)
				assert.Equal(t, []*task.Job{running}, s.Jobs())
			}
		})
	}
}
