package scheduler

import (
	"testing"

	"github.com/cuemby/rtsim/pkg/config"
	"github.com/cuemby/rtsim/pkg/task"
	"github.com/stretchr/testify/require"
)

func newTask(t *testing.T, id int) *task.Task {
	t.Helper()
	tk, err := task.New(task.Spec{ID: id, Exec: 1, Period: 100}, nil, nil)
	require.NoError(t, err)
	return tk
}

func newMKTask(t *testing.T, id, m, k int) *task.Task {
	t.Helper()
	tk, err := task.New(task.Spec{ID: id, Exec: 1, Period: 100, Model: task.ModelDistance, M: m, K: k}, nil, nil)
	require.NoError(t, err)
	return tk
}

// job builds a job released at 0.
func job(tk *task.Task, seq, exec, deadline int) *task.Job {
	return task.NewJob(tk, seq, 0, exec, deadline, tk.Priority())
}

// started returns the job after steps ticks of execution.
func started(j *task.Job, steps int) *task.Job {
	for i := 0; i < steps; i++ {
		j.ExecStep(i)
	}
	return j
}

func noExecCancellations() config.SchedulerConfig {
	cfg := config.Default()
	cfg.ExecCancellations = false
	return cfg
}

func noDlMissCancellations() config.SchedulerConfig {
	cfg := config.Default()
	cfg.DlMissCancellations = false
	return cfg
}
