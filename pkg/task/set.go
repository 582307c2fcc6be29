package task

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/cuemby/rtsim/pkg/persist"
)

// Set is a named group of tasks simulated together.
type Set struct {
	Name  string
	Tasks []*Task
}

// NewSet groups tasks, rejecting duplicate IDs.
func NewSet(name string, tasks ...*Task) (*Set, error) {
	seen := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		if t == nil {
			return nil, fmt.Errorf("%w: task set %q contains a nil task", ErrInvalidSpec, name)
		}
		if seen[t.ID()] {
			return nil, fmt.Errorf("%w: task set %q: duplicate task id %d", ErrInvalidSpec, name, t.ID())
		}
		seen[t.ID()] = true
	}
	return &Set{Name: name, Tasks: tasks}, nil
}

// Clone returns a set of fresh task copies.
func (s *Set) Clone() *Set {
	c := &Set{Name: s.Name, Tasks: make([]*Task, len(s.Tasks))}
	for i, t := range s.Tasks {
		c.Tasks[i] = t.Clone()
	}
	return c
}

// Adapt returns a set where every task was passed through fn.
func (s *Set) Adapt(fn func(*Task) (*Task, error)) (*Set, error) {
	c := &Set{Name: s.Name, Tasks: make([]*Task, len(s.Tasks))}
	for i, t := range s.Tasks {
		at, err := fn(t)
		if err != nil {
			return nil, fmt.Errorf("failed to adapt task %d: %w", t.ID(), err)
		}
		c.Tasks[i] = at
	}
	return c, nil
}

// Fingerprint identifies the static content of the set. Two sets with the
// same tasks in the same order share a fingerprint regardless of run state.
func (s *Set) Fingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(s.Name)
	for _, t := range s.Tasks {
		sp := t.spec
		_, _ = d.WriteString("|" + string(sp.Model))
		for _, v := range []int{sp.ID, sp.Period, sp.Offset, sp.Deadline, sp.Exec, sp.Priority, sp.Jitter, sp.M, sp.K} {
			_, _ = d.WriteString("," + strconv.Itoa(v))
		}
		_, _ = d.WriteString("," + strconv.FormatInt(sp.Seed, 10))
		writeElement(d, t.calc)
		// a clone carries the aggregator parameters without its run state
		writeElement(d, t.agg.Clone())
	}
	return d.Sum64()
}

func writeElement(d *xxhash.Digest, w persist.Writer) {
	e := persist.Encode(w)
	_, _ = d.WriteString("|" + e.Name)
	for _, f := range e.Fields {
		_, _ = fmt.Fprintf(d, ",%s=%v", f.Key, f.Value)
	}
}

// Utilization is the sum of the task utilizations.
func (s *Set) Utilization() float64 {
	u := 0.0
	for _, t := range s.Tasks {
		u += t.Utilization()
	}
	return u
}

// Get returns the task with the given ID.
func (s *Set) Get(id int) *Task {
	for _, t := range s.Tasks {
		if t.ID() == id {
			return t
		}
	}
	return nil
}

func (s *Set) ElementName() string { return "TaskSet" }

func (s *Set) WriteFields(e *persist.Element) {
	e.Set("name", s.Name)
	for _, t := range s.Tasks {
		e.Append(t)
	}
}
