package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the simulation collectors. Every series is labelled with
// the scheduler name so that a harness run can compare schedulers side by
// side.
type Metrics struct {
	Ticks          *prometheus.CounterVec
	JobsReleased   *prometheus.CounterVec
	JobsCompleted  *prometheus.CounterVec
	JobsCancelled  *prometheus.CounterVec
	DeadlineMisses *prometheus.CounterVec
	IdleTicks      *prometheus.CounterVec
	RunsTotal      *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtsim_ticks_total",
				Help: "Total number of simulated ticks by scheduler",
			},
			[]string{"scheduler"},
		),
		JobsReleased: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtsim_jobs_released_total",
				Help: "Total number of jobs released by scheduler",
			},
			[]string{"scheduler"},
		),
		JobsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtsim_jobs_completed_total",
				Help: "Total number of completed jobs by scheduler",
			},
			[]string{"scheduler"},
		),
		JobsCancelled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtsim_jobs_cancelled_total",
				Help: "Total number of cancelled jobs by scheduler",
			},
			[]string{"scheduler"},
		),
		DeadlineMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtsim_deadline_misses_total",
				Help: "Total number of jobs completed after their deadline by scheduler",
			},
			[]string{"scheduler"},
		),
		IdleTicks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtsim_idle_ticks_total",
				Help: "Total number of ticks without a ready job by scheduler",
			},
			[]string{"scheduler"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtsim_runs_total",
				Help: "Total number of finished runs by scheduler and exit condition",
			},
			[]string{"scheduler", "exit"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rtsim_run_duration_seconds",
				Help:    "Wall-clock duration of a run in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"scheduler"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.Ticks,
			m.JobsReleased,
			m.JobsCompleted,
			m.JobsCancelled,
			m.DeadlineMisses,
			m.IdleTicks,
			m.RunsTotal,
			m.RunDuration,
		)
	}
	return m
}

// Handler returns the Prometheus HTTP handler for g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Timer measures the wall-clock time of an operation
type Timer struct {
	start time.Time
}

// NewTimer starts a timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the time elapsed since the timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time in h
func (t *Timer) ObserveDuration(h prometheus.Observer) {
	h.Observe(t.Duration().Seconds())
}

// ObserveDurationVec records the elapsed time in hv under labels
func (t *Timer) ObserveDurationVec(hv *prometheus.HistogramVec, labels ...string) {
	hv.WithLabelValues(labels...).Observe(t.Duration().Seconds())
}
