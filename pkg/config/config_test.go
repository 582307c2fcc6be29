package config

import (
	"path/filepath"
	"testing"

	"github.com/cuemby/rtsim/pkg/task"
	"github.com/cuemby/rtsim/pkg/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap(t *testing.T) {
	tests := []struct {
		name     string
		kv       map[string]string
		expected SchedulerConfig
		wantErr  bool
	}{
		{name: "nil map", kv: nil, expected: Default()},
		{name: "empty map", kv: map[string]string{}, expected: SchedulerConfig{true, true}},
		{
			name:     "exec disabled",
			kv:       map[string]string{KeyExecCancellations: "false"},
			expected: SchedulerConfig{ExecCancellations: false, DlMissCancellations: true},
		},
		{
			name:     "both disabled",
			kv:       map[string]string{KeyExecCancellations: "0", KeyDlMissCancellations: "false"},
			expected: SchedulerConfig{},
		},
		{
			name:     "unknown keys ignored",
			kv:       map[string]string{"other": "x"},
			expected: Default(),
		},
		{name: "bad value", kv: map[string]string{KeyDlMissCancellations: "maybe"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromMap(tt.kv)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestFromMapReportsFirstMalformedKey(t *testing.T) {
	kv := map[string]string{
		KeyExecCancellations:   "maybe",
		KeyDlMissCancellations: "sometimes",
	}
	for i := 0; i < 20; i++ {
		_, err := FromMap(kv)
		require.ErrorIs(t, err, ErrInvalidValue)
		assert.Contains(t, err.Error(), KeyExecCancellations+`="maybe"`)
		assert.NotContains(t, err.Error(), KeyDlMissCancellations)
	}
}

func TestLoadTaskSet(t *testing.T) {
	set, err := LoadTaskSet(filepath.Join("testdata", "overload.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "overload", set.Name)
	require.Len(t, set.Tasks, 3)

	sensor := set.Tasks[0]
	assert.Equal(t, "sensor", sensor.Name())
	assert.Equal(t, task.ModelPeriodic, sensor.Model())
	assert.Equal(t, 4, sensor.Spec().Deadline)

	actuator := set.Tasks[1]
	assert.Equal(t, task.ModelDistance, actuator.Model())
	assert.IsType(t, &utility.MKWindow{}, actuator.Aggregator())

	logger := set.Tasks[2]
	assert.Equal(t, 3, logger.ID())
	assert.Equal(t, task.ModelSporadicPeriodic, logger.Model())
	assert.IsType(t, &utility.Soft{}, logger.Calculator())
	assert.IsType(t, &utility.ExpMovingAverage{}, logger.Aggregator())
	assert.Equal(t, 1.0, logger.Aggregator().CurrentUtility())
}

func TestParseTaskSetErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "not yaml", yaml: "tasks: ["},
		{name: "no tasks", yaml: "name: empty"},
		{name: "bad task", yaml: "tasks:\n  - period: 0\n    exec: 1\n"},
		{name: "bad calculator", yaml: "tasks:\n  - period: 5\n    exec: 1\n    calculator: {type: hard}\n"},
		{name: "soft without tolerance", yaml: "tasks:\n  - period: 5\n    exec: 1\n    calculator: {type: soft}\n"},
		{name: "bad aggregator", yaml: "tasks:\n  - period: 5\n    exec: 1\n    aggregator: {type: median}\n"},
		{name: "bad window", yaml: "tasks:\n  - period: 5\n    exec: 1\n    aggregator: {type: window}\n"},
		{name: "duplicate ids", yaml: "tasks:\n  - {id: 1, period: 5, exec: 1}\n  - {id: 1, period: 5, exec: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTaskSet([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseTaskSetIDs(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		expected []int
	}{
		{
			name:     "explicit zero kept",
			yaml:     "tasks:\n  - {id: 0, period: 5, exec: 1}\n  - {id: 1, period: 5, exec: 1}\n  - {period: 5, exec: 1}\n",
			expected: []int{0, 1, 3},
		},
		{
			name:     "absent ids numbered by position",
			yaml:     "tasks:\n  - {period: 5, exec: 1}\n  - {period: 5, exec: 1}\n",
			expected: []int{1, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseTaskSet([]byte(tt.yaml))
			require.NoError(t, err)

			ids := make([]int, 0, len(set.Tasks))
			for _, tk := range set.Tasks {
				ids = append(ids, tk.ID())
			}
			assert.Equal(t, tt.expected, ids)
		})
	}

	_, err := ParseTaskSet([]byte("tasks:\n  - {id: 2, period: 5, exec: 1}\n  - {period: 5, exec: 1}\n"))
	assert.ErrorIs(t, err, task.ErrInvalidSpec, "positional id collides with explicit id")
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "scenario.yaml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("testdata", "overload.yaml"), sc.TaskSet)
	assert.Equal(t, 200, sc.Cycles)
	assert.Equal(t, []string{"EDF", "BE-EDF", "MKU"}, sc.Schedulers)
	assert.True(t, sc.StopOnMiss)

	cfg, err := sc.SchedulerConfig()
	require.NoError(t, err)
	assert.False(t, cfg.ExecCancellations)
	assert.True(t, cfg.DlMissCancellations)

	_, err = LoadTaskSet(sc.TaskSet)
	assert.NoError(t, err)
}

func TestParseScenarioValidation(t *testing.T) {
	_, err := ParseScenario([]byte("schedulers: [EDF]"))
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseScenario([]byte("taskset: a.yaml"))
	assert.ErrorIs(t, err, ErrInvalidValue)

	sc, err := ParseScenario([]byte("taskset: a.yaml\nschedulers: [EDF]"))
	require.NoError(t, err)
	assert.Equal(t, DefaultCycles, sc.Cycles)
}
