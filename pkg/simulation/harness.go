package simulation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cuemby/rtsim/pkg/config"
	"github.com/cuemby/rtsim/pkg/log"
	"github.com/cuemby/rtsim/pkg/task"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Handle addresses a combination inside a harness.
type Handle int

// Provider builds runs for scheduler keys.
type Provider interface {
	NewRun(key string, set *task.Set, cfg config.SchedulerConfig, opts ...Option) (*Run, error)
}

// Combination is one (task set, scheduler) pair to evaluate.
type Combination struct {
	Set       *task.Set
	Scheduler string
	Config    config.SchedulerConfig
}

func (c Combination) key() string {
	return strconv.FormatUint(c.Set.Fingerprint(), 16) + "/" + c.Scheduler + "/" +
		strconv.FormatBool(c.Config.ExecCancellations) + "/" +
		strconv.FormatBool(c.Config.DlMissCancellations)
}

// Outcome is the evaluation of one combination. Duplicate is set when the
// result is shared with an identical earlier combination.
type Outcome struct {
	Handle      Handle
	Combination Combination
	View        View
	Duplicate   *Duplicate
}

// Harness evaluates combinations concurrently. Identical combinations are
// simulated once.
type Harness struct {
	provider   Provider
	cycles     int
	parallel   int
	stopOnMiss bool
	runOpts    []Option
	logger     zerolog.Logger

	combos   []Combination
	outcomes []*Outcome
	finished *FinishedSet
}

// HarnessOption configures a Harness.
type HarnessOption func(h *Harness)

// WithParallelism bounds the number of concurrent runs. Values below one
// mean unbounded.
func WithParallelism(n int) HarnessOption {
	return func(h *Harness) {
		h.parallel = n
	}
}

// WithRunOptions passes options to every run.
func WithRunOptions(opts ...Option) HarnessOption {
	return func(h *Harness) {
		h.runOpts = append(h.runOpts, opts...)
	}
}

func WithHarnessStopOnMiss(stop bool) HarnessOption {
	return func(h *Harness) {
		h.stopOnMiss = stop
	}
}

// NewHarness creates a harness simulating cycles ticks per run.
func NewHarness(p Provider, cycles int, opts ...HarnessOption) *Harness {
	h := &Harness{
		provider: p,
		cycles:   cycles,
		logger:   log.WithComponent("harness"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Add queues a combination and returns its handle.
func (h *Harness) Add(c Combination) Handle {
	h.combos = append(h.combos, c)
	return Handle(len(h.combos) - 1)
}

func (h *Harness) Len() int {
	return len(h.combos)
}

// Evaluate builds every run up front, failing on the first unknown or
// unavailable scheduler, then executes the distinct runs concurrently.
func (h *Harness) Evaluate(ctx context.Context) error {
	h.outcomes = make([]*Outcome, len(h.combos))
	h.finished = NewFinishedSet(len(h.combos))

	primary := make(map[string]Handle)
	runs := make(map[Handle]*Run)
	for i, c := range h.combos {
		hd := Handle(i)
		h.outcomes[i] = &Outcome{Handle: hd, Combination: c}
		if _, ok := primary[c.key()]; ok {
			continue
		}
		opts := append([]Option{WithStopOnMiss(h.stopOnMiss)}, h.runOpts...)
		run, err := h.provider.NewRun(c.Scheduler, c.Set, c.Config, opts...)
		if err != nil {
			return fmt.Errorf("combination %d (%s, %s): %w", i, c.Set.Name, c.Scheduler, err)
		}
		primary[c.key()] = hd
		runs[hd] = run
	}

	h.logger.Info().
		Int("combinations", len(h.combos)).
		Int("runs", len(runs)).
		Int("parallel", h.parallel).
		Msg("Evaluation started")

	g, gctx := errgroup.WithContext(ctx)
	if h.parallel > 0 {
		g.SetLimit(h.parallel)
	}
	for hd, run := range runs {
		g.Go(func() error {
			res, err := run.Execute(gctx, h.cycles)
			if err != nil {
				return fmt.Errorf("run %s: %w", run.ID(), err)
			}
			h.outcomes[hd].View = NewView(res)
			return h.finished.Mark(hd)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, c := range h.combos {
		hd := Handle(i)
		src := primary[c.key()]
		if src == hd {
			continue
		}
		dup, err := NewDuplicate(h.outcomes[src].View, c.Set.Fingerprint())
		if err != nil {
			return err
		}
		h.outcomes[i].View = dup.View()
		h.outcomes[i].Duplicate = dup
		if err := h.finished.Mark(hd); err != nil {
			return err
		}
	}

	h.logger.Info().Int("finished", h.finished.Count()).Msg("Evaluation finished")
	return nil
}

// Outcome returns the outcome for hd after Evaluate.
func (h *Harness) Outcome(hd Handle) (*Outcome, error) {
	if int(hd) < 0 || int(hd) >= len(h.outcomes) {
		return nil, fmt.Errorf("%w: handle %d, size %d", ErrIndexOutOfRange, hd, len(h.outcomes))
	}
	return h.outcomes[hd], nil
}

// Outcomes returns every outcome in handle order.
func (h *Harness) Outcomes() []*Outcome {
	return append([]*Outcome(nil), h.outcomes...)
}

// Finished reports whether hd has a result.
func (h *Harness) Finished(hd Handle) (bool, error) {
	if h.finished == nil {
		h.finished = NewFinishedSet(len(h.combos))
	}
	return h.finished.Has(hd)
}
