package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/rtsim/pkg/config"
	"github.com/cuemby/rtsim/pkg/events"
	"github.com/cuemby/rtsim/pkg/registry"
	"github.com/cuemby/rtsim/pkg/simulation"
	"github.com/cuemby/rtsim/pkg/storage"
	"github.com/cuemby/rtsim/pkg/task"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run -f TASKSET",
	Short: "Simulate a task set under one scheduler",
	Long: `Simulate a task set under one scheduler and print the outcome.

Scheduler options are passed as key=value pairs, for example
--set execCancellations=false. With --data-dir the result and a snapshot of
the task set are stored for 'rtsim results'.`,
	RunE: runSimulation,
}

func init() {
	runCmd.Flags().StringP("file", "f", "", "Task-set YAML file (required)")
	runCmd.Flags().StringP("scheduler", "s", "EDF", "Scheduler key (see 'rtsim schedulers')")
	runCmd.Flags().Int("cycles", config.DefaultCycles, "Number of ticks to simulate")
	runCmd.Flags().StringToString("set", nil, "Scheduler option key=value")
	runCmd.Flags().Bool("stop-on-miss", false, "Stop at the first failing tick")
	runCmd.Flags().String("data-dir", "", "Store the result in this directory")
	runCmd.Flags().Bool("watch", false, "Print job events while simulating")
	runCmd.MarkFlagRequired("file")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")
	key, _ := cmd.Flags().GetString("scheduler")
	cycles, _ := cmd.Flags().GetInt("cycles")
	kv, _ := cmd.Flags().GetStringToString("set")
	stopOnMiss, _ := cmd.Flags().GetBool("stop-on-miss")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	watch, _ := cmd.Flags().GetBool("watch")

	if cycles <= 0 {
		return fmt.Errorf("--cycles must be positive")
	}

	set, err := config.LoadTaskSet(filename)
	if err != nil {
		return err
	}
	cfg, err := config.FromMap(kv)
	if err != nil {
		return err
	}

	opts := []simulation.Option{simulation.WithStopOnMiss(stopOnMiss)}

	var watched chan struct{}
	if watch {
		broker := events.NewBroker()
		broker.Start()
		defer broker.Stop()

		sub := broker.Subscribe()
		watched = make(chan struct{})
		go func() {
			defer close(watched)
			defer broker.Unsubscribe(sub)
			for ev := range sub {
				printEvent(cmd.OutOrStdout(), ev)
				if ev.Type == events.EventRunFinished {
					return
				}
			}
		}()
		opts = append(opts, simulation.WithBroker(broker))
	}

	run, err := registry.Default().NewRun(key, set, cfg, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := run.Execute(ctx, cycles)
	if watched != nil {
		select {
		case <-watched:
		case <-time.After(time.Second):
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
	if err != nil && res == nil {
		return err
	}

	printResult(cmd.OutOrStdout(), res)

	if dataDir != "" {
		if err := saveResults(dataDir, set, res); err != nil {
			return err
		}
	}
	return err
}

func saveResults(dataDir string, set *task.Set, results ...*simulation.Result) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveTaskSet(set); err != nil {
		return fmt.Errorf("failed to save task set: %w", err)
	}
	for _, res := range results {
		if err := store.SaveResult(res); err != nil {
			return fmt.Errorf("failed to save result %s: %w", res.ID, err)
		}
	}
	return nil
}
