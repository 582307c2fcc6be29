package utility

import (
	"fmt"

	"github.com/cuemby/rtsim/pkg/persist"
)

// window is the circular buffer shared by the windowed aggregators. It holds
// the last size values; head points at the most recently written slot.
type window struct {
	values  []float64
	head    int
	sum     float64
	count   int
	divisor float64
}

func newWindow(size int, divisor float64) window {
	w := window{
		values:  make([]float64, size),
		divisor: divisor,
	}
	w.reset()
	return w
}

// reset fills the buffer with successes.
func (w *window) reset() {
	for i := range w.values {
		w.values[i] = 1.0
	}
	w.sum = float64(len(w.values))
	w.head = len(w.values) - 1
	w.count = 0
}

// next is the slot that the next value overwrites, i.e. the oldest one.
func (w *window) next() int {
	return (w.head + 1) % len(w.values)
}

func (w *window) addHook(u float64) {
	slot := w.next()
	w.sum -= w.values[slot]
	w.values[slot] = u
	w.sum += u
	w.head = slot
	w.count++
}

func (w *window) AddUtility(u float64) {
	if !finite(u) {
		return
	}
	w.addHook(u)
}

func (w *window) PredictUtility(u float64) float64 {
	if !finite(u) {
		return w.CurrentUtility()
	}
	return (w.sum - w.values[w.next()] + u) / w.divisor
}

func (w *window) CurrentUtility() float64 {
	return w.sum / w.divisor
}

func (w *window) Count() int { return w.count }

// Size returns the window length.
func (w *window) Size() int { return len(w.values) }

// Recent returns the buffered values, oldest first.
func (w *window) Recent() []float64 {
	out := make([]float64, 0, len(w.values))
	for i := 1; i <= len(w.values); i++ {
		out = append(out, w.values[(w.head+i)%len(w.values)])
	}
	return out
}

func (w *window) writeWindowFields(e *persist.Element) {
	e.Set("size", len(w.values))
	e.Set("values", w.Recent())
	e.Set("sum", w.sum)
	e.Set("count", w.count)
}

// Window is the mean over the last Size values.
type Window struct {
	window
}

// NewWindow returns a sliding-window mean of the given size.
func NewWindow(size int) (*Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: window size %d", ErrInvalidParameter, size)
	}
	return &Window{window: newWindow(size, float64(size))}, nil
}

func (a *Window) Clone() Aggregator {
	return &Window{window: newWindow(a.Size(), a.divisor)}
}

func (a *Window) ElementName() string { return "WindowAggregator" }

func (a *Window) WriteFields(e *persist.Element) {
	a.writeWindowFields(e)
}

// MKWindow is the (m,k)-firm window: k slots, divided by m, so a value of at
// least 1 means at least m of the last k jobs succeeded.
type MKWindow struct {
	window
	m int
}

// NewMKWindow returns an (m,k)-firm aggregator. 0 < m <= k is required.
func NewMKWindow(m, k int) (*MKWindow, error) {
	if m <= 0 || k <= 0 || m > k {
		return nil, fmt.Errorf("%w: (m,k) = (%d,%d)", ErrInvalidParameter, m, k)
	}
	return &MKWindow{window: newWindow(k, float64(m)), m: m}, nil
}

// M returns the required number of successes per window.
func (a *MKWindow) M() int { return a.m }

// K returns the window length.
func (a *MKWindow) K() int { return a.Size() }

func (a *MKWindow) Clone() Aggregator {
	return &MKWindow{window: newWindow(a.Size(), float64(a.m)), m: a.m}
}

func (a *MKWindow) ElementName() string { return "MKAggregator" }

func (a *MKWindow) WriteFields(e *persist.Element) {
	a.writeWindowFields(e)
	e.Set("m", a.m)
}
