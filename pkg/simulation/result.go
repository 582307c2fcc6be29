package simulation

import (
	"fmt"
	"slices"
	"time"

	"github.com/cuemby/rtsim/pkg/task"
)

// ExitCondition describes how a run ended.
type ExitCondition string

const (
	ExitCompleted    ExitCondition = "completed"
	ExitDeadlineMiss ExitCondition = "deadline-miss"
	ExitAborted      ExitCondition = "aborted"
)

// Counters aggregates the per-tick statistics of a run.
type Counters struct {
	Ticks          int `json:"ticks"`
	Released       int `json:"released"`
	Completed      int `json:"completed"`
	Cancelled      int `json:"cancelled"`
	DeadlineMisses int `json:"deadlineMisses"`
	Idle           int `json:"idle"`
	Preemptions    int `json:"preemptions"`
}

// TaskResult is the outcome of one task over a run.
type TaskResult struct {
	ID      int        `json:"id"`
	Name    string     `json:"name,omitempty"`
	Model   task.Model `json:"model"`
	Stats   task.Stats `json:"stats"`
	History string     `json:"history,omitempty"`
	Utility float64    `json:"utility"`
}

// Result is the record of a finished run. It is not modified after
// Execute returns and may be shared through View.
type Result struct {
	ID          string        `json:"id"`
	Scheduler   string        `json:"scheduler"`
	TaskSet     string        `json:"taskSet"`
	Fingerprint uint64        `json:"fingerprint"`
	Exit        ExitCondition `json:"exit"`
	FailedAt    int           `json:"failedAt"`
	Cycles      int           `json:"cycles"`
	Counters    Counters      `json:"counters"`
	Tasks       []TaskResult  `json:"tasks"`
	StartedAt   time.Time     `json:"startedAt"`
	Duration    time.Duration `json:"duration"`
}

// Successful reports whether the run completed every cycle without failure.
func (r *Result) Successful() bool {
	return r.Exit == ExitCompleted
}

func (r *Result) String() string {
	if r.Exit == ExitCompleted {
		return fmt.Sprintf("%s: %s after %d cycles", r.Scheduler, r.Exit, r.Cycles)
	}
	return fmt.Sprintf("%s: %s at cycle %d", r.Scheduler, r.Exit, r.FailedAt)
}

// View is a read-only handle on a shared Result. Slices returned by its
// accessors are copies.
type View struct {
	r *Result
}

// NewView borrows r. A nil result yields an invalid view.
func NewView(r *Result) View {
	return View{r: r}
}

func (v View) Valid() bool             { return v.r != nil }
func (v View) ID() string              { return v.r.ID }
func (v View) Scheduler() string       { return v.r.Scheduler }
func (v View) TaskSet() string         { return v.r.TaskSet }
func (v View) Fingerprint() uint64     { return v.r.Fingerprint }
func (v View) Exit() ExitCondition     { return v.r.Exit }
func (v View) FailedAt() int           { return v.r.FailedAt }
func (v View) Cycles() int             { return v.r.Cycles }
func (v View) Counters() Counters      { return v.r.Counters }
func (v View) Successful() bool        { return v.r.Successful() }
func (v View) Tasks() []TaskResult     { return slices.Clone(v.r.Tasks) }
func (v View) Duration() time.Duration { return v.r.Duration }
func (v View) String() string          { return v.r.String() }

// Snapshot returns a copy of the underlying result.
func (v View) Snapshot() Result {
	c := *v.r
	c.Tasks = slices.Clone(v.r.Tasks)
	return c
}
