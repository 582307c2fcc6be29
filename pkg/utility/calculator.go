package utility

import (
	"github.com/cuemby/rtsim/pkg/persist"
)

// Job is the view of a job a calculator needs.
type Job interface {
	ActivationTime() int
	AbsoluteDeadline() int
	ExecutionTime() int
}

// Calculator scores a single job outcome. Implementations are stateless.
type Calculator interface {
	persist.Writer
	// CalcUtility returns the utility of j completing at completionTime.
	CalcUtility(j Job, completionTime int) float64
	Clone() Calculator
}

// Firm is the firm real-time law: full utility on time, nothing after.
type Firm struct{}

// NewFirm returns the firm real-time calculator.
func NewFirm() *Firm {
	return &Firm{}
}

func (c *Firm) CalcUtility(j Job, completionTime int) float64 {
	if completionTime <= j.AbsoluteDeadline() {
		return 1.0
	}
	return 0.0
}

func (c *Firm) Clone() Calculator { return &Firm{} }

func (c *Firm) ElementName() string { return "FirmCalculator" }

func (c *Firm) WriteFields(e *persist.Element) {}

// Soft keeps full utility until the deadline and then decays linearly to
// zero over Tolerance ticks.
type Soft struct {
	Tolerance int
}

// NewSoft returns a soft real-time calculator with the given tolerance.
func NewSoft(tolerance int) *Soft {
	return &Soft{Tolerance: tolerance}
}

func (c *Soft) CalcUtility(j Job, completionTime int) float64 {
	late := completionTime - j.AbsoluteDeadline()
	if late <= 0 {
		return 1.0
	}
	if late >= c.Tolerance {
		return 0.0
	}
	return 1.0 - float64(late)/float64(c.Tolerance)
}

func (c *Soft) Clone() Calculator { return &Soft{Tolerance: c.Tolerance} }

func (c *Soft) ElementName() string { return "SoftCalculator" }

func (c *Soft) WriteFields(e *persist.Element) {
	e.Set("tolerance", c.Tolerance)
}
