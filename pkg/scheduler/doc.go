/*
Package scheduler provides the scheduling policies of the real-time task
simulator.

A scheduler owns the ready sequence of a simulation. The driver pushes newly
activated jobs into it and then, once per simulated tick, lets it reconcile
the sequence with feasibility and dispatch one job for one tick of execution.

# Per-tick Protocol

	┌──────────────────────────────────────────────────────────┐
	│                    Simulation Tick                        │
	└────────────────┬─────────────────────────────────────────┘
	                 │
	                 ▼
	┌──────────────────────────────────────────────────────────┐
	│  1. EnqueueJob for every job released at now             │
	│  2. InitStep(now, scheduleStat)                          │
	│  3. Schedule(now, scheduleStat)                          │
	│     • cancels jobs, recording them in scheduleStat       │
	│  4. Dispatch(now, dispatchStat)                          │
	│     • runs the head job for one tick                     │
	│     • completed jobs go back to their task               │
	└──────────────────────────────────────────────────────────┘

Cancelled jobs are not reported to their task by the scheduler; the driver
calls the task's CancelHook for every job in ScheduleStat.Cancelled.
Completed jobs are reported by Dispatch through CompletionHook with the
completion time now+1.

# Core Components

EDF: the ready sequence is sorted by absolute deadline. Jobs with equal
deadlines keep their enqueue order. CheckSchedule is the feasibility oracle
used by the overload schedulers:

	s := scheduler.NewEDF(config.Default())
	s.EnqueueJob(j)
	if miss := s.CheckSchedule(now); miss != nil {
		// running the sequence back to back from now, miss is the first
		// job that completes after its deadline
	}

Overload: EDF plus a cancellation loop driven by a Policy. A policy names a
value function, an optional admissibility rule and a comparison (Min or Max):

	loop:
	  miss = CheckSchedule(now)
	  stop if miss is nil or was already found in the previous pass
	  among jobs ahead of miss, pick the admissible one with the best value
	  if none, consider miss itself
	  cancel the pick, if any

The loop is best effort. If no job is admissible it stops after one pass over
the same miss job and leaves the sequence infeasible.

FixedPriority: the ready sequence is sorted by static job priority (0 first).
Every enqueue registers the job with a deadline monitor; every execution step
reorders it there; Schedule drains the monitor and cancels overdue jobs.

# Policies

	┌──────────┬─────┬────────────────────────────────────────┬──────────┐
	│ Name     │ Cmp │ Value(t, job)                          │ Admit    │
	├──────────┼─────┼────────────────────────────────────────┼──────────┤
	│ BE-EDF   │ min │ execValue(t) / exec                    │          │
	│ HCEDF    │ max │ historyValue(t) * remaining            │          │
	│ WHCEDF   │ max │ historyValue(t)                        │          │
	│ GMUA-MK  │ min │ execValue(t) / (exec * distance)       │ value>=1 │
	│ MKU      │ max │ failHistoryValue (0 if started and     │ value>=1 │
	│          │     │ execCancellations is off)              │          │
	└──────────┴─────┴────────────────────────────────────────┴──────────┘

With ExecCancellations disabled, jobs that already executed are never
selected, whatever their value.

# Configuration

	cfg := config.SchedulerConfig{
		ExecCancellations:   true, // started jobs may be cancelled
		DlMissCancellations: true, // jobs that cannot meet their deadline are cancelled
	}

# Thread Safety

Schedulers are not safe for concurrent use. A simulation drives its scheduler
from a single goroutine; independent simulations use independent schedulers.

# See Also

  - pkg/monitor for the deadline monitor
  - pkg/task for jobs, tasks and the value queries used by policies
  - pkg/simulation for the tick driver
*/
package scheduler
