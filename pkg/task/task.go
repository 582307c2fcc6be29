package task

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/cuemby/rtsim/pkg/persist"
	"github.com/cuemby/rtsim/pkg/utility"
)

// ErrInvalidSpec is returned when a task specification is inconsistent.
var ErrInvalidSpec = errors.New("invalid task spec")

// OptionalPriorityOffset is added to the priority of optional jobs of an
// (m,k)-pattern task so that every mandatory job outranks them.
const OptionalPriorityOffset = 1000

// Model selects how a task releases jobs.
type Model string

const (
	ModelPeriodic         Model = "periodic"
	ModelSporadic         Model = "sporadic"
	ModelSporadicPeriodic Model = "sporadic-periodic"
	ModelMKPattern        Model = "mk-pattern"
	ModelDistance         Model = "distance"
)

// IsMK reports whether the model tracks an (m,k) outcome history.
func (m Model) IsMK() bool {
	return m == ModelMKPattern || m == ModelDistance
}

// Spec holds the static parameters of a task.
type Spec struct {
	ID       int
	Name     string
	Model    Model
	Period   int // period, or minimum inter-arrival time for sporadic tasks
	Offset   int // first activation
	Deadline int // relative deadline, defaults to Period
	Exec     int
	Priority int
	Jitter   int // maximum release jitter of sporadic models
	Seed     int64
	M, K     int
}

func (s Spec) normalize() (Spec, error) {
	if s.Model == "" {
		s.Model = ModelPeriodic
	}
	if s.Deadline == 0 {
		s.Deadline = s.Period
	}
	switch {
	case s.Exec <= 0:
		return s, fmt.Errorf("%w: task %d: execution time %d must be positive", ErrInvalidSpec, s.ID, s.Exec)
	case s.Period <= 0:
		return s, fmt.Errorf("%w: task %d: period %d must be positive", ErrInvalidSpec, s.ID, s.Period)
	case s.Deadline <= 0:
		return s, fmt.Errorf("%w: task %d: deadline %d must be positive", ErrInvalidSpec, s.ID, s.Deadline)
	case s.Offset < 0 || s.Jitter < 0:
		return s, fmt.Errorf("%w: task %d: offset and jitter must not be negative", ErrInvalidSpec, s.ID)
	}

	switch s.Model {
	case ModelPeriodic, ModelSporadic:
	case ModelSporadicPeriodic:
		if s.Jitter >= s.Period {
			return s, fmt.Errorf("%w: task %d: jitter %d must be below period %d", ErrInvalidSpec, s.ID, s.Jitter, s.Period)
		}
	case ModelMKPattern, ModelDistance:
		if s.M <= 0 || s.K <= 0 || s.M > s.K {
			return s, fmt.Errorf("%w: task %d: (m,k) = (%d,%d) requires 0 < m <= k", ErrInvalidSpec, s.ID, s.M, s.K)
		}
	default:
		return s, fmt.Errorf("%w: task %d: unknown model %q", ErrInvalidSpec, s.ID, s.Model)
	}
	return s, nil
}

// Stats counts job outcomes over the lifetime of a task.
type Stats struct {
	Activations     int
	Completions     int
	Successes       int
	LateCompletions int
	Cancellations   int
	DynamicFailures int
}

// Task releases jobs according to its model and keeps the outcome history
// that schedulers query through the Possible* methods.
type Task struct {
	spec Spec
	calc utility.Calculator
	agg  utility.Aggregator

	next     int
	released int
	history  *history
	rng      *rand.Rand
	stats    Stats
}

// New creates a task. A nil calculator defaults to the firm law; a nil
// aggregator defaults to the (m,k) window for (m,k) models and to the plain
// mean otherwise.
func New(spec Spec, calc utility.Calculator, agg utility.Aggregator) (*Task, error) {
	spec, err := spec.normalize()
	if err != nil {
		return nil, err
	}
	if calc == nil {
		calc = utility.NewFirm()
	}
	if agg == nil {
		if spec.Model.IsMK() {
			agg, err = utility.NewMKWindow(spec.M, spec.K)
			if err != nil {
				return nil, fmt.Errorf("%w: task %d: %v", ErrInvalidSpec, spec.ID, err)
			}
		} else {
			agg = utility.NewMean()
		}
	}

	t := &Task{spec: spec, calc: calc, agg: agg}
	t.reset()
	return t, nil
}

func (t *Task) reset() {
	t.next = t.spec.Offset
	t.released = 0
	t.stats = Stats{}
	t.history = nil
	if t.spec.Model.IsMK() {
		t.history = newHistory(t.spec.M, t.spec.K)
	}
	t.rng = rand.New(rand.NewSource(t.spec.Seed))
	if t.spec.Model == ModelSporadicPeriodic {
		t.next += t.jitter()
	}
}

// Clone returns a task with the same parameters and fresh state.
func (t *Task) Clone() *Task {
	c := &Task{spec: t.spec, calc: t.calc.Clone(), agg: t.agg.Clone()}
	c.reset()
	return c
}

// WithModel returns a fresh copy of the task released under another model.
// The aggregator is replaced by the model's default when the (m,k) property
// of the model changes.
func (t *Task) WithModel(model Model) (*Task, error) {
	spec := t.spec
	spec.Model = model

	agg := t.agg.Clone()
	if model.IsMK() != t.spec.Model.IsMK() {
		agg = nil
	}
	return New(spec, t.calc.Clone(), agg)
}

func (t *Task) jitter() int {
	if t.spec.Jitter == 0 {
		return 0
	}
	return t.rng.Intn(t.spec.Jitter + 1)
}

// Spawn releases a job when now has reached the next activation.
func (t *Task) Spawn(now int) *Job {
	if now < t.next {
		return nil
	}

	j := NewJob(t, t.released, now, t.spec.Exec, now+t.spec.Deadline, t.jobPriority())
	t.released++
	t.stats.Activations++

	switch t.spec.Model {
	case ModelSporadic:
		t.next = now + t.spec.Period + t.jitter()
	case ModelSporadicPeriodic:
		t.next = t.spec.Offset + t.released*t.spec.Period + t.jitter()
	default:
		t.next = t.spec.Offset + t.released*t.spec.Period
	}
	return j
}

func (t *Task) jobPriority() int {
	switch t.spec.Model {
	case ModelMKPattern:
		if !t.Mandatory(t.released) {
			return t.spec.Priority + OptionalPriorityOffset
		}
	case ModelDistance:
		return t.history.distance()
	}
	return t.spec.Priority
}

// Mandatory reports whether the job with the given sequence number belongs to
// the static (m,k) pattern. Non-pattern tasks treat every job as mandatory.
func (t *Task) Mandatory(seq int) bool {
	if t.spec.Model != ModelMKPattern {
		return true
	}
	m, k := t.spec.M, t.spec.K
	a := seq % k
	c := (a*m + k - 1) / k
	return a == c*k/m
}

// CompletionHook records that j finished at completionTime and reports
// whether it met its deadline.
func (t *Task) CompletionHook(j *Job, completionTime int) bool {
	t.checkOwner(j)

	t.agg.AddUtility(t.calc.CalcUtility(j, completionTime))
	met := completionTime <= j.AbsoluteDeadline()

	t.stats.Completions++
	if met {
		t.stats.Successes++
	} else {
		t.stats.LateCompletions++
	}
	t.recordOutcome(met)
	return met
}

// CancelHook records a job that was withdrawn before finishing.
func (t *Task) CancelHook(j *Job) {
	t.checkOwner(j)

	t.agg.AddUtility(0)
	t.stats.Cancellations++
	t.recordOutcome(false)
}

func (t *Task) recordOutcome(met bool) {
	if t.history == nil {
		return
	}
	t.history.record(met)
	if t.history.failing() {
		t.stats.DynamicFailures++
	}
}

func (t *Task) checkOwner(j *Job) {
	if j == nil {
		panic(fmt.Sprintf("task %d: nil job", t.spec.ID))
	}
	if j.task != t {
		panic(fmt.Sprintf("task %d: job %s belongs to another task", t.spec.ID, j.ID()))
	}
}

// PossibleExecValue is the utility of j if it ran uninterrupted from start.
func (t *Task) PossibleExecValue(j *Job, start int) float64 {
	return t.calc.CalcUtility(j, start+j.RemainingExecutionTime())
}

// PossibleHistoryValue is the aggregate utility if j ran uninterrupted from
// start and its outcome were committed.
func (t *Task) PossibleHistoryValue(j *Job, start int) float64 {
	return t.agg.PredictUtility(t.PossibleExecValue(j, start))
}

// PossibleFailHistoryValue is the aggregate utility if j failed.
func (t *Task) PossibleFailHistoryValue(j *Job) float64 {
	return t.agg.PredictUtility(0)
}

// Distance is the number of consecutive failures the task tolerates before
// violating its (m,k) constraint. Tasks without an (m,k) history return 1.
func (t *Task) Distance() float64 {
	if t.history == nil {
		return 1
	}
	return float64(t.history.distance())
}

// Failing reports whether the (m,k) constraint is currently violated.
func (t *Task) Failing() bool {
	return t.history != nil && t.history.failing()
}

// History renders the (m,k) outcome window, oldest first.
func (t *Task) History() string {
	if t.history == nil {
		return ""
	}
	return t.history.String()
}

// Utilization is the execution time divided by the period.
func (t *Task) Utilization() float64 {
	return float64(t.spec.Exec) / float64(t.spec.Period)
}

func (t *Task) ID() int                        { return t.spec.ID }
func (t *Task) Name() string                   { return t.spec.Name }
func (t *Task) Spec() Spec                     { return t.spec }
func (t *Task) Model() Model                   { return t.spec.Model }
func (t *Task) Priority() int                  { return t.spec.Priority }
func (t *Task) NextActivation() int            { return t.next }
func (t *Task) Stats() Stats                   { return t.stats }
func (t *Task) Calculator() utility.Calculator { return t.calc }
func (t *Task) Aggregator() utility.Aggregator { return t.agg }

func (t *Task) ElementName() string {
	switch t.spec.Model {
	case ModelSporadic:
		return "SporadicTask"
	case ModelSporadicPeriodic:
		return "SporadicPeriodicTask"
	case ModelMKPattern:
		return "MKPatternTask"
	case ModelDistance:
		return "DistanceTask"
	default:
		return "PeriodicTask"
	}
}

func (t *Task) WriteFields(e *persist.Element) {
	t.writePeriodicFields(e)
	switch t.spec.Model {
	case ModelSporadic, ModelSporadicPeriodic:
		e.Set("jitter", t.spec.Jitter)
		e.Set("seed", t.spec.Seed)
	case ModelMKPattern, ModelDistance:
		e.Set("m", t.spec.M)
		e.Set("k", t.spec.K)
		e.Set("history", t.history.String())
	}
	e.Append(t.calc)
	e.Append(t.agg)
}

func (t *Task) writeTaskFields(e *persist.Element) {
	e.Set("id", t.spec.ID)
	if t.spec.Name != "" {
		e.Set("name", t.spec.Name)
	}
	e.Set("exec", t.spec.Exec)
	e.Set("deadline", t.spec.Deadline)
	e.Set("priority", t.spec.Priority)
}

func (t *Task) writePeriodicFields(e *persist.Element) {
	t.writeTaskFields(e)
	e.Set("period", t.spec.Period)
	e.Set("offset", t.spec.Offset)
}
