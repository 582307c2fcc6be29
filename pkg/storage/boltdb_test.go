package storage

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/rtsim/pkg/config"
	"github.com/cuemby/rtsim/pkg/scheduler"
	"github.com/cuemby/rtsim/pkg/simulation"
	"github.com/cuemby/rtsim/pkg/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newSet(t *testing.T) *task.Set {
	t.Helper()
	a, err := task.New(task.Spec{ID: 1, Name: "sensor", Period: 4, Exec: 3}, nil, nil)
	require.NoError(t, err)
	b, err := task.New(task.Spec{ID: 2, Name: "actuator", Model: task.ModelDistance, Period: 6, Exec: 4, M: 1, K: 3}, nil, nil)
	require.NoError(t, err)
	set, err := task.NewSet("overload", a, b)
	require.NoError(t, err)
	return set
}

func execute(t *testing.T, set *task.Set, id string) *simulation.Result {
	t.Helper()
	run := simulation.NewRun(set.Clone(), scheduler.NewBestEffortEDF(config.Default()), simulation.WithID(id))
	res, err := run.Execute(context.Background(), 40)
	require.NoError(t, err)
	return res
}

func TestResultRoundTrip(t *testing.T) {
	s := newStore(t)
	res := execute(t, newSet(t), "4f0c2a")

	require.NoError(t, s.SaveResult(res))

	got, err := s.GetResult("4f0c2a")
	require.NoError(t, err)
	assert.Equal(t, res.Counters, got.Counters)
	assert.Equal(t, res.Tasks, got.Tasks)
	assert.Equal(t, res.Fingerprint, got.Fingerprint)
	assert.Equal(t, res.Exit, got.Exit)
	assert.True(t, res.StartedAt.Equal(got.StartedAt))

	_, err = s.GetResult("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteResult("4f0c2a"))
	_, err = s.GetResult("4f0c2a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindResultByPrefix(t *testing.T) {
	s := newStore(t)
	set := newSet(t)
	for _, id := range []string{"abc1", "abc2", "abd", "b"} {
		require.NoError(t, s.SaveResult(execute(t, set, id)))
	}

	tests := []struct {
		prefix string
		want   string
		err    error
	}{
		{prefix: "abd", want: "abd"},
		{prefix: "abc1", want: "abc1"},
		{prefix: "b", want: "b"},
		{prefix: "abc", err: ErrAmbiguous},
		{prefix: "c", err: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, err := s.FindResult(tt.prefix)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestListResultsOldestFirst(t *testing.T) {
	s := newStore(t)
	set := newSet(t)

	first := execute(t, set, "z-first")
	time.Sleep(2 * time.Millisecond)
	second := execute(t, set, "a-second")
	require.NoError(t, s.SaveResult(second))
	require.NoError(t, s.SaveResult(first))

	results, err := s.ListResults()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "z-first", results[0].ID)
	assert.Equal(t, "a-second", results[1].ID)
}

func TestTaskSetSnapshot(t *testing.T) {
	s := newStore(t)
	set := newSet(t)

	require.NoError(t, s.SaveTaskSet(set))

	data, err := s.GetTaskSet(set.Fingerprint())
	require.NoError(t, err)
	assert.Contains(t, string(data), "TaskSet:")
	assert.Contains(t, string(data), "name: overload")
	assert.Contains(t, string(data), "DistanceTask:")

	_, err = s.GetTaskSet(set.Fingerprint() + 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBoltStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveResult(execute(t, newSet(t), "persisted")))
	require.NoError(t, s.Close())

	s, err = NewBoltStore(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetResult("persisted")
	require.NoError(t, err)
	assert.Equal(t, "BE-EDF", got.Scheduler)
}
