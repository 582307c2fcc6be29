package utility

import (
	"errors"
	"fmt"
	"math"

	"github.com/cuemby/rtsim/pkg/persist"
)

// ErrInvalidParameter is returned for aggregator parameters out of range.
var ErrInvalidParameter = errors.New("invalid aggregator parameter")

// Aggregator accumulates the utilities of a task's jobs.
type Aggregator interface {
	persist.Writer
	// AddUtility commits u. Non-finite values are discarded.
	AddUtility(u float64)
	// PredictUtility returns what CurrentUtility would be after AddUtility(u)
	// without changing any state.
	PredictUtility(u float64) float64
	CurrentUtility() float64
	// Count returns the number of committed values.
	Count() int
	// Clone returns an aggregator with the same parameters and fresh state.
	Clone() Aggregator
}

func finite(u float64) bool {
	return !math.IsNaN(u) && !math.IsInf(u, 0)
}

// Mean is the plain arithmetic mean over every committed value.
type Mean struct {
	sum   float64
	count int
}

// NewMean returns an empty mean aggregator.
func NewMean() *Mean {
	return &Mean{}
}

func (a *Mean) AddUtility(u float64) {
	if !finite(u) {
		return
	}
	a.sum += u
	a.count++
}

func (a *Mean) PredictUtility(u float64) float64 {
	if !finite(u) {
		return a.CurrentUtility()
	}
	return (a.sum + u) / float64(a.count+1)
}

// CurrentUtility returns 0 while no value has been committed.
func (a *Mean) CurrentUtility() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

func (a *Mean) Count() int { return a.count }

func (a *Mean) Clone() Aggregator { return NewMean() }

func (a *Mean) ElementName() string { return "MeanAggregator" }

func (a *Mean) WriteFields(e *persist.Element) {
	e.Set("sum", a.sum)
	e.Set("count", a.count)
}

// ExpMovingAverage weights the newest value by Alpha.
type ExpMovingAverage struct {
	alpha   float64
	initial float64
	value   float64
	count   int
}

// NewExpMovingAverage returns an exponentially weighted mean starting at
// initial. alpha must be in (0, 1].
func NewExpMovingAverage(alpha, initial float64) (*ExpMovingAverage, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("%w: alpha %v not in (0, 1]", ErrInvalidParameter, alpha)
	}
	return &ExpMovingAverage{alpha: alpha, initial: initial, value: initial}, nil
}

func (a *ExpMovingAverage) AddUtility(u float64) {
	if !finite(u) {
		return
	}
	a.value = a.PredictUtility(u)
	a.count++
}

func (a *ExpMovingAverage) PredictUtility(u float64) float64 {
	if !finite(u) {
		return a.value
	}
	return a.alpha*u + (1-a.alpha)*a.value
}

func (a *ExpMovingAverage) CurrentUtility() float64 { return a.value }

func (a *ExpMovingAverage) Count() int { return a.count }

func (a *ExpMovingAverage) Clone() Aggregator {
	return &ExpMovingAverage{alpha: a.alpha, initial: a.initial, value: a.initial}
}

func (a *ExpMovingAverage) ElementName() string { return "EMAAggregator" }

func (a *ExpMovingAverage) WriteFields(e *persist.Element) {
	e.Set("alpha", a.alpha)
	e.Set("initial", a.initial)
	e.Set("value", a.value)
	e.Set("count", a.count)
}
