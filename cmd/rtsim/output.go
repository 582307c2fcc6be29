package main

import (
	"fmt"
	"io"

	"github.com/cuemby/rtsim/pkg/events"
	"github.com/cuemby/rtsim/pkg/simulation"
)

func printResult(w io.Writer, res *simulation.Result) {
	c := res.Counters
	fmt.Fprintf(w, "Run:        %s\n", res.ID)
	fmt.Fprintf(w, "Scheduler:  %s\n", res.Scheduler)
	fmt.Fprintf(w, "Task set:   %s (%016x)\n", res.TaskSet, res.Fingerprint)
	if res.Exit == simulation.ExitCompleted {
		fmt.Fprintf(w, "Exit:       %s after %d cycles\n", res.Exit, res.Cycles)
	} else {
		fmt.Fprintf(w, "Exit:       %s at cycle %d (%d simulated)\n", res.Exit, res.FailedAt, res.Cycles)
	}
	fmt.Fprintf(w, "Jobs:       %d released, %d completed, %d cancelled, %d late\n",
		c.Released, c.Completed, c.Cancelled, c.DeadlineMisses)
	fmt.Fprintf(w, "Idle ticks: %d of %d\n", c.Idle, c.Ticks)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-4s %-16s %-18s %6s %6s %6s %6s %8s  %s\n",
		"ID", "NAME", "MODEL", "JOBS", "MET", "LATE", "CANCEL", "UTILITY", "HISTORY")
	for _, t := range res.Tasks {
		fmt.Fprintf(w, "%-4d %-16s %-18s %6d %6d %6d %6d %8.3f  %s\n",
			t.ID, t.Name, t.Model, t.Stats.Activations, t.Stats.Successes,
			t.Stats.LateCompletions, t.Stats.Cancellations, t.Utility, t.History)
	}
}

func printResultRow(w io.Writer, res *simulation.Result, note string) {
	c := res.Counters
	fmt.Fprintf(w, "%-36s %-8s %-14s %7d %9d %9d %6d  %s\n",
		res.ID, res.Scheduler, res.Exit, res.Cycles, c.Completed, c.Cancelled, c.DeadlineMisses, note)
}

func printResultHeader(w io.Writer) {
	fmt.Fprintf(w, "%-36s %-8s %-14s %7s %9s %9s %6s\n",
		"RUN", "SCHED", "EXIT", "CYCLES", "COMPLETED", "CANCELLED", "LATE")
}

func printEvent(w io.Writer, ev *events.Event) {
	switch ev.Type {
	case events.EventRunStarted, events.EventRunFinished:
		fmt.Fprintf(w, "[%6d] %-20s %s\n", ev.Tick, ev.Type, ev.Message)
	default:
		fmt.Fprintf(w, "[%6d] %-20s job %s\n", ev.Tick, ev.Type, ev.Metadata["job"])
	}
}
