package scheduler

import (
	"github.com/cuemby/rtsim/pkg/config"
	"github.com/cuemby/rtsim/pkg/task"
)

func atLeastOne(j *task.Job, value float64) bool {
	return value >= 1
}

// BestEffortPolicy cancels the job with the lowest value density.
func BestEffortPolicy() Policy {
	return Policy{
		Name:       "BE-EDF",
		Comparison: Min,
		Value: func(cfg config.SchedulerConfig, t int, j *task.Job) float64 {
			return j.Task().PossibleExecValue(j, t) / float64(j.ExecutionTime())
		},
	}
}

// HistoryCognisantPolicy cancels the job whose task history, weighted by the
// work left, stays highest.
func HistoryCognisantPolicy() Policy {
	return Policy{
		Name:       "HCEDF",
		Comparison: Max,
		Value: func(cfg config.SchedulerConfig, t int, j *task.Job) float64 {
			return j.Task().PossibleHistoryValue(j, t) * float64(j.RemainingExecutionTime())
		},
	}
}

// WeightedHistoryCognisantPolicy cancels the job whose task history stays highest.
func WeightedHistoryCognisantPolicy() Policy {
	return Policy{
		Name:       "WHCEDF",
		Comparison: Max,
		Value: func(cfg config.SchedulerConfig, t int, j *task.Job) float64 {
			return j.Task().PossibleHistoryValue(j, t)
		},
	}
}

// GMUAMKPolicy is the single-processor gMUA-MK rule: value density scaled by
// the task's distance to an (m,k) failure.
func GMUAMKPolicy() Policy {
	return Policy{
		Name:       "GMUA-MK",
		Comparison: Min,
		Value: func(cfg config.SchedulerConfig, t int, j *task.Job) float64 {
			tk := j.Task()
			return tk.PossibleExecValue(j, t) / (float64(j.ExecutionTime()) * tk.Distance())
		},
		Admit: atLeastOne,
	}
}

// MKUtilityPolicy cancels the job whose task keeps the highest (m,k) utility
// after a failure, as long as the constraint still holds.
func MKUtilityPolicy() Policy {
	return Policy{
		Name:       "MKU",
		Comparison: Max,
		Value: func(cfg config.SchedulerConfig, t int, j *task.Job) float64 {
			if !cfg.ExecCancellations && j.Started() {
				return 0
			}
			return j.Task().PossibleFailHistoryValue(j)
		},
		Admit: atLeastOne,
	}
}

func NewBestEffortEDF(cfg config.SchedulerConfig) *Overload {
	return NewOverload(cfg, BestEffortPolicy())
}

func NewHCEDF(cfg config.SchedulerConfig) *Overload {
	return NewOverload(cfg, HistoryCognisantPolicy())
}

func NewWHCEDF(cfg config.SchedulerConfig) *Overload {
	return NewOverload(cfg, WeightedHistoryCognisantPolicy())
}

func NewGMUAMK(cfg config.SchedulerConfig) *Overload {
	return NewOverload(cfg, GMUAMKPolicy())
}

func NewMKU(cfg config.SchedulerConfig) *Overload {
	return NewOverload(cfg, MKUtilityPolicy())
}
