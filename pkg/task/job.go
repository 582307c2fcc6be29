package task

import (
	"fmt"

	"github.com/cuemby/rtsim/pkg/persist"
)

// JobID identifies a job by its task and activation sequence number. It is
// comparable and used as a map key instead of job pointers.
type JobID struct {
	Task int
	Seq  int
}

func (id JobID) String() string {
	return fmt.Sprintf("%d.%d", id.Task, id.Seq)
}

// Job is one activation of a Task. Its shape is fixed at creation; only the
// execution progress changes.
type Job struct {
	task *Task
	seq  int

	activationTime   int
	executionTime    int
	remaining        int
	absoluteDeadline int
	priority         int
	latestStartTime  int
	preemptions      int
}

// NewJob creates a job owned by t. Tasks create their jobs through Spawn;
// this constructor exists for schedulers and tests that need hand-built jobs.
func NewJob(t *Task, seq, activation, execution, deadline, priority int) *Job {
	if execution <= 0 {
		panic(fmt.Sprintf("job %d.%d: execution time must be positive, got %d", taskID(t), seq, execution))
	}
	j := &Job{
		task:             t,
		seq:              seq,
		activationTime:   activation,
		executionTime:    execution,
		remaining:        execution,
		absoluteDeadline: deadline,
		priority:         priority,
	}
	j.updateLatestStart()
	return j
}

func taskID(t *Task) int {
	if t == nil {
		return -1
	}
	return t.ID()
}

func (j *Job) updateLatestStart() {
	j.latestStartTime = j.absoluteDeadline - j.remaining
}

// ExecStep runs the job for one tick and reports whether it is complete.
func (j *Job) ExecStep(now int) bool {
	if j.remaining > 0 {
		j.remaining--
		j.updateLatestStart()
	}
	return j.remaining == 0
}

// IsFeasible reports whether the job can still meet its deadline when started at now.
func (j *Job) IsFeasible(now int) bool {
	return j.latestStartTime >= now
}

// Started reports whether the job has consumed any execution time.
func (j *Job) Started() bool {
	return j.remaining < j.executionTime
}

// Done reports whether the job has no execution time left.
func (j *Job) Done() bool {
	return j.remaining == 0
}

// Preempted records that the job was displaced after it had started.
func (j *Job) Preempted() {
	j.preemptions++
}

func (j *Job) ID() JobID {
	return JobID{Task: taskID(j.task), Seq: j.seq}
}

func (j *Job) Task() *Task                 { return j.task }
func (j *Job) Seq() int                    { return j.seq }
func (j *Job) ActivationTime() int         { return j.activationTime }
func (j *Job) ExecutionTime() int          { return j.executionTime }
func (j *Job) RemainingExecutionTime() int { return j.remaining }
func (j *Job) AbsoluteDeadline() int       { return j.absoluteDeadline }
func (j *Job) Priority() int               { return j.priority }
func (j *Job) LatestStartTime() int        { return j.latestStartTime }
func (j *Job) PreemptionCount() int        { return j.preemptions }

func (j *Job) String() string {
	return fmt.Sprintf("job %s (a=%d c=%d/%d d=%d)", j.ID(), j.activationTime,
		j.remaining, j.executionTime, j.absoluteDeadline)
}

func (j *Job) ElementName() string { return "Job" }

func (j *Job) WriteFields(e *persist.Element) {
	e.Set("task", taskID(j.task))
	e.Set("seq", j.seq)
	e.Set("activation", j.activationTime)
	e.Set("execution", j.executionTime)
	e.Set("remaining", j.remaining)
	e.Set("deadline", j.absoluteDeadline)
	e.Set("priority", j.priority)
	e.Set("preemptions", j.preemptions)
}
