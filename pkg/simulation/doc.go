/*
Package simulation drives task sets through schedulers in discrete time and
evaluates many such runs side by side.

# Tick Sequence

Run.Step simulates exactly one tick:

	┌──────────── tick now ────────────┐
	│ 1. Spawn      every task, in set │
	│               order; EnqueueJob  │
	│ 2. InitStep   scheduler hook     │
	│ 3. Schedule   feasibility and    │
	│               overload handling; │
	│               CancelHook for     │
	│               every cancellation │
	│ 4. Dispatch   one job executes;  │
	│               CompletionHook on  │
	│               completion at now+1│
	└──────────────────────────────────┘

Execute repeats Step until the requested number of cycles, checking the
context between ticks. A run fails at the first tick that loses a job (a late
completion or a cancellation) of a task without (m,k) constraints, or that
drives an (m,k) task into dynamic failure. Failures are reported in the
Result, never as errors; WithStopOnMiss ends the run at that tick.

# Results and Duplicates

A Result is written once when Execute returns and is treated as immutable
from then on. View is a cheap read-only handle on a shared Result. When an
evaluation contains the same task set and scheduler configuration twice, the
second combination is not simulated again: a Duplicate holds a View of the
first result and its own identity. NewDuplicate refuses a result computed for
a different task set fingerprint.

# Harness

Harness builds every run up front through a Provider (normally
registry.Registry), then executes the distinct runs with an errgroup bounded
by WithParallelism. Runs share no mutable state. Completion is tracked in a
FinishedSet addressed by the Handle returned from Add.

	h := simulation.NewHarness(registry.Default(), 1000, simulation.WithParallelism(4))
	for _, key := range []string{"EDF", "BE-EDF", "MKU"} {
		h.Add(simulation.Combination{Set: set, Scheduler: key, Config: cfg})
	}
	if err := h.Evaluate(ctx); err != nil {
		return err
	}
	for _, o := range h.Outcomes() {
		fmt.Println(o.View)
	}
*/
package simulation
