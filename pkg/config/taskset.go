package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/rtsim/pkg/task"
	"github.com/cuemby/rtsim/pkg/utility"
	"gopkg.in/yaml.v3"
)

// TaskSetFile is the on-disk form of a task set.
type TaskSetFile struct {
	Name  string      `yaml:"name"`
	Tasks []TaskEntry `yaml:"tasks"`
}

// TaskEntry describes one task of a task-set file.
type TaskEntry struct {
	ID         *int            `yaml:"id,omitempty"`
	Name       string          `yaml:"name,omitempty"`
	Model      string          `yaml:"model,omitempty"`
	Period     int             `yaml:"period"`
	Offset     int             `yaml:"offset,omitempty"`
	Deadline   int             `yaml:"deadline,omitempty"`
	Exec       int             `yaml:"exec"`
	Priority   int             `yaml:"priority,omitempty"`
	Jitter     int             `yaml:"jitter,omitempty"`
	Seed       int64           `yaml:"seed,omitempty"`
	M          int             `yaml:"m,omitempty"`
	K          int             `yaml:"k,omitempty"`
	Calculator CalculatorEntry `yaml:"calculator,omitempty"`
	Aggregator AggregatorEntry `yaml:"aggregator,omitempty"`
}

// CalculatorEntry selects a utility calculator.
type CalculatorEntry struct {
	Type      string `yaml:"type,omitempty"` // firm (default) or soft
	Tolerance int    `yaml:"tolerance,omitempty"`
}

// AggregatorEntry selects a utility aggregator. An empty type picks the
// model default.
type AggregatorEntry struct {
	Type    string   `yaml:"type,omitempty"` // mean, ema, window or mk
	Size    int      `yaml:"size,omitempty"`
	Alpha   float64  `yaml:"alpha,omitempty"`
	Initial *float64 `yaml:"initial,omitempty"`
}

// LoadTaskSet reads and builds a task set from a YAML file.
func LoadTaskSet(path string) (*task.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task set: %w", err)
	}
	set, err := ParseTaskSet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if set.Name == "" {
		set.Name = filepath.Base(path)
	}
	return set, nil
}

// ParseTaskSet builds a task set from YAML. Tasks without an id key are
// numbered by position starting at 1; an explicit id, zero included, is kept.
func ParseTaskSet(data []byte) (*task.Set, error) {
	var file TaskSetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return file.Build()
}

// Build constructs the tasks described by the file.
func (f *TaskSetFile) Build() (*task.Set, error) {
	if len(f.Tasks) == 0 {
		return nil, fmt.Errorf("%w: task set %q has no tasks", task.ErrInvalidSpec, f.Name)
	}
	tasks := make([]*task.Task, 0, len(f.Tasks))
	for i, entry := range f.Tasks {
		if entry.ID == nil {
			id := i + 1
			entry.ID = &id
		}
		t, err := entry.Build()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return task.NewSet(f.Name, tasks...)
}

// Build constructs the task described by the entry. A missing id builds
// task 0.
func (e TaskEntry) Build() (*task.Task, error) {
	id := 0
	if e.ID != nil {
		id = *e.ID
	}
	spec := task.Spec{
		ID:       id,
		Name:     e.Name,
		Model:    task.Model(e.Model),
		Period:   e.Period,
		Offset:   e.Offset,
		Deadline: e.Deadline,
		Exec:     e.Exec,
		Priority: e.Priority,
		Jitter:   e.Jitter,
		Seed:     e.Seed,
		M:        e.M,
		K:        e.K,
	}

	calc, err := e.Calculator.build()
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", id, err)
	}
	agg, err := e.Aggregator.build(e.M, e.K)
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", id, err)
	}
	return task.New(spec, calc, agg)
}

func (c CalculatorEntry) build() (utility.Calculator, error) {
	switch c.Type {
	case "", "firm":
		return utility.NewFirm(), nil
	case "soft":
		if c.Tolerance <= 0 {
			return nil, fmt.Errorf("%w: soft calculator needs a positive tolerance", ErrInvalidValue)
		}
		return utility.NewSoft(c.Tolerance), nil
	default:
		return nil, fmt.Errorf("%w: unknown calculator %q", ErrInvalidValue, c.Type)
	}
}

func (a AggregatorEntry) build(m, k int) (utility.Aggregator, error) {
	switch a.Type {
	case "":
		return nil, nil
	case "mean":
		return utility.NewMean(), nil
	case "ema":
		initial := 1.0
		if a.Initial != nil {
			initial = *a.Initial
		}
		return utility.NewExpMovingAverage(a.Alpha, initial)
	case "window":
		return utility.NewWindow(a.Size)
	case "mk":
		return utility.NewMKWindow(m, k)
	default:
		return nil, fmt.Errorf("%w: unknown aggregator %q", ErrInvalidValue, a.Type)
	}
}
