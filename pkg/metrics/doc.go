/*
Package metrics provides Prometheus metrics collection and exposition for rtsim.

The metrics package defines the simulation counters, a run-duration histogram
and a small health checker used by the evaluation server. Collectors are
created per Metrics value and registered against a caller-supplied
prometheus.Registerer, so tests can use an isolated registry and the CLI can
choose whether to expose anything at all.

# Architecture

	┌──────────────────── METRICS SYSTEM ────────────────────┐
	│                                                         │
	│  simulation.Run ──(per tick)──► *Metrics                │
	│                                   │                     │
	│             rtsim_ticks_total{scheduler}                │
	│             rtsim_jobs_released_total{scheduler}        │
	│             rtsim_jobs_completed_total{scheduler}       │
	│             rtsim_jobs_cancelled_total{scheduler}       │
	│             rtsim_deadline_misses_total{scheduler}      │
	│             rtsim_idle_ticks_total{scheduler}           │
	│             rtsim_runs_total{scheduler,exit}            │
	│             rtsim_run_duration_seconds{scheduler}       │
	│                                   │                     │
	│                    prometheus.Registry                  │
	│                                   │                     │
	│         GET /metrics   GET /health   GET /ready         │
	└─────────────────────────────────────────────────────────┘

# Metric Types

Counters are monotonic and aggregate over every run that shares a Metrics
value. With a harness evaluating several schedulers concurrently, comparing
rate(rtsim_jobs_cancelled_total[1m]) across the scheduler label shows which
policy sheds the most load.

The histogram is observed once per finished run. Run.Execute times itself
with a Timer:

	timer := metrics.NewTimer()
	// simulate
	timer.ObserveDurationVec(m.RunDuration, schedulerName)

# Health

HealthChecker is instance based. The evaluate command registers "harness" as
its critical component; /ready returns 503 until the scenario is loaded and
the harness is running.

# See Also

  - Prometheus client: https://github.com/prometheus/client_golang
*/
package metrics
