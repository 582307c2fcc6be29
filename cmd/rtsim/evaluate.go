package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/cuemby/rtsim/pkg/config"
	"github.com/cuemby/rtsim/pkg/log"
	"github.com/cuemby/rtsim/pkg/metrics"
	"github.com/cuemby/rtsim/pkg/registry"
	"github.com/cuemby/rtsim/pkg/simulation"
	"github.com/cuemby/rtsim/pkg/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate -f SCENARIO",
	Short: "Compare several schedulers on one task set",
	Long: `Evaluate a scenario: one task set simulated under every listed
scheduler, concurrently. Identical combinations are simulated once.

With --metrics-addr, Prometheus metrics are served on /metrics together with
/health and /ready while the evaluation runs.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringP("file", "f", "", "Scenario YAML file (required)")
	evaluateCmd.Flags().Int("parallel", runtime.NumCPU(), "Maximum number of concurrent runs")
	evaluateCmd.Flags().String("metrics-addr", "", "Serve metrics on this address, e.g. 127.0.0.1:9090")
	evaluateCmd.Flags().Duration("linger", 0, "Keep serving metrics this long after the evaluation")
	evaluateCmd.Flags().String("data-dir", "", "Store the results in this directory")
	evaluateCmd.MarkFlagRequired("file")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")
	parallel, _ := cmd.Flags().GetInt("parallel")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	linger, _ := cmd.Flags().GetDuration("linger")
	dataDir, _ := cmd.Flags().GetString("data-dir")

	sc, err := config.LoadScenario(filename)
	if err != nil {
		return err
	}
	set, err := config.LoadTaskSet(sc.TaskSet)
	if err != nil {
		return err
	}
	cfg, err := sc.SchedulerConfig()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.NewMetrics(reg)
	health := metrics.NewHealthChecker(Version, "harness")
	health.SetComponent("harness", false, "loading scenario")

	if metricsAddr != "" {
		srv := startMetricsServer(metricsAddr, reg, health)
		defer func() {
			if linger > 0 {
				time.Sleep(linger)
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	h := simulation.NewHarness(registry.Default(), sc.Cycles,
		simulation.WithParallelism(parallel),
		simulation.WithHarnessStopOnMiss(sc.StopOnMiss),
		simulation.WithRunOptions(simulation.WithMetrics(m)),
	)
	for _, key := range sc.Schedulers {
		h.Add(simulation.Combination{Set: set, Scheduler: key, Config: cfg})
	}

	ctx, cancel := signalContext()
	defer cancel()

	health.SetComponent("harness", true, "")
	if err := h.Evaluate(ctx); err != nil {
		health.SetComponent("harness", false, err.Error())
		return err
	}

	return reportOutcomes(cmd, set, h.Outcomes(), dataDir)
}

func reportOutcomes(cmd *cobra.Command, set *task.Set, outcomes []*simulation.Outcome, dataDir string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Task set %s: %d tasks, utilization %.3f\n\n", set.Name, len(set.Tasks), set.Utilization())
	printResultHeader(w)

	var results []*simulation.Result
	for _, o := range outcomes {
		res := o.View.Snapshot()
		note := ""
		if o.Duplicate != nil {
			note = "same as " + o.Duplicate.SourceID()
		} else {
			results = append(results, &res)
		}
		printResultRow(w, &res, note)
	}

	if dataDir == "" {
		return nil
	}
	if err := saveResults(dataDir, set, results...); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nSaved %d results to %s\n", len(results), dataDir)
	return nil
}

func startMetricsServer(addr string, reg *prometheus.Registry, health *metrics.HealthChecker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.HandleFunc("/health", health.HealthHandler())
	mux.HandleFunc("/ready", health.ReadyHandler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger := log.WithComponent("metrics")
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
		}
	}()
	logger.Info().Str("addr", addr).Msg("Serving metrics")
	return srv
}
