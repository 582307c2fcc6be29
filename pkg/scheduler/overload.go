package scheduler

import (
	"math"

	"github.com/cuemby/rtsim/pkg/config"
	"github.com/cuemby/rtsim/pkg/task"
)

// Comparison selects whether the overload engine cancels the candidate with
// the smallest or the largest value.
type Comparison int

const (
	Min Comparison = iota
	Max
)

// Seed is the comparison-neutral starting value.
func (c Comparison) Seed() float64 {
	if c == Max {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// Better reports whether candidate replaces current.
func (c Comparison) Better(current, candidate float64) bool {
	if c == Max {
		return candidate > current
	}
	return candidate < current
}

func (c Comparison) String() string {
	if c == Max {
		return "max"
	}
	return "min"
}

// Policy parameterises the overload engine.
type Policy struct {
	Name       string
	Comparison Comparison
	// Value is the worth of j if it started at t.
	Value func(cfg config.SchedulerConfig, t int, j *task.Job) float64
	// Admit optionally narrows the cancellation candidates further than the
	// ExecCancellations rule.
	Admit func(j *task.Job, value float64) bool
}

// Overload is EDF with overload resolution: while the sequence is
// infeasible, it cancels the extremal-value job among those scheduled ahead
// of the first job that would miss, falling back to that job itself.
type Overload struct {
	*EDF
	policy Policy
}

// NewOverload creates an overload-resolving EDF scheduler for policy.
func NewOverload(cfg config.SchedulerConfig, policy Policy) *Overload {
	return &Overload{EDF: NewEDF(cfg), policy: policy}
}

func (s *Overload) Name() string { return s.policy.Name }

// Policy returns the value policy of the scheduler.
func (s *Overload) Policy() Policy { return s.policy }

// CalcValue returns the policy value of j starting at t.
func (s *Overload) CalcValue(t int, j *task.Job) float64 {
	return s.policy.Value(s.cfg, t, j)
}

// IsCancelCandidate reports whether j may be cancelled. Started jobs are
// protected unless ExecCancellations is set.
func (s *Overload) IsCancelCandidate(j *task.Job, value float64) bool {
	if !s.cfg.ExecCancellations && j.Started() {
		return false
	}
	if s.policy.Admit != nil {
		return s.policy.Admit(j, value)
	}
	return true
}

func (s *Overload) Schedule(now int, stat *ScheduleStat) error {
	if err := s.EDF.Schedule(now, stat); err != nil {
		return err
	}
	s.resolve(now, stat)
	return nil
}

// resolve gives up as soon as the same job is found missing twice in a row,
// which leaves the schedule infeasible when no candidate is admissible.
func (s *Overload) resolve(now int, stat *ScheduleStat) {
	var lastFound *task.Job
	for {
		miss := s.CheckSchedule(now)
		if miss == nil || miss == lastFound {
			return
		}

		var best *task.Job
		bestValue := s.policy.Comparison.Seed()
		t := now
		for _, j := range s.jobs {
			if j == miss {
				break
			}
			v := s.CalcValue(t, j)
			t += j.RemainingExecutionTime()
			if s.IsCancelCandidate(j, v) && s.policy.Comparison.Better(bestValue, v) {
				best, bestValue = j, v
			}
		}

		if best == nil {
			v := s.CalcValue(t, miss)
			if s.IsCancelCandidate(miss, v) && s.policy.Comparison.Better(bestValue, v) {
				best = miss
			}
		}

		if best != nil {
			s.cancel(best, stat)
		}
		lastFound = miss
	}
}
