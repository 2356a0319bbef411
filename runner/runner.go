// Package runner executes catalog entries and aggregates their outcomes.
//
// Entries run strictly in catalog order. A failing, erroring, or panicking
// validator is recorded and the run continues, so one failure never masks
// another. The aggregate is computed only after every selected entry has
// been attempted.
package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lattice-substrate/cryptval/catalog"
	"github.com/lattice-substrate/cryptval/valerr"
)

// Message recorded for a validator that returns (false, nil).
const failedMessage = "validator reported failure"

// Options configures a Runner.
type Options struct {
	// Logger receives per-entry progress. Nil discards.
	Logger *log.Logger
	// Timeout bounds how long the runner waits on each validator. Zero runs
	// validators inline with no deadline. A validator that misses its
	// deadline is abandoned, not stopped: its goroutine keeps running and
	// may overlap the entries that follow it. Validators run under a timeout
	// must therefore not share mutable state with later entries.
	Timeout time.Duration
}

// Result is the outcome of one validator.
type Result struct {
	Name    string              `json:"name"`
	Passed  bool                `json:"passed"`
	Message string              `json:"message,omitempty"`
	Class   valerr.FailureClass `json:"class,omitempty"`
}

// Summary is the outcome of one run. It carries no wall-clock data, so the
// same selection over the same catalog yields an identical summary.
type Summary struct {
	Thorough  bool     `json:"thorough"`
	Aggregate bool     `json:"aggregate"`
	Results   []Result `json:"results"`
}

// Counts returns the number of passing and failing results.
func (s *Summary) Counts() (passed, failed int) {
	for _, r := range s.Results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// Failures returns the failing results in run order.
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// Runner executes validators from a sealed catalog.
type Runner struct {
	catalog *catalog.Catalog
	logger  *log.Logger
	timeout time.Duration
}

// New returns a Runner over c and seals c.
func New(c *catalog.Catalog, opts Options) (*Runner, error) {
	if c == nil {
		return nil, valerr.New(valerr.InvalidConfig, "", "catalog is required")
	}
	if opts.Timeout < 0 {
		return nil, valerr.New(valerr.InvalidConfig, opts.Timeout.String(), "timeout must not be negative")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c.Seal()
	return &Runner{catalog: c, logger: logger, timeout: opts.Timeout}, nil
}

// RunAll runs every entry in catalog order.
func (r *Runner) RunAll(ctx context.Context, thorough bool) *Summary {
	return r.run(ctx, r.catalog.All(), thorough)
}

// RunSubset runs the named entries in catalog order. Duplicate names are
// collapsed. Every name is checked before anything runs; an unknown name
// is returned as an UNKNOWN_VALIDATOR error and no entry is executed.
func (r *Runner) RunSubset(ctx context.Context, names []string, thorough bool) (*Summary, error) {
	if len(names) == 0 {
		return nil, valerr.New(valerr.InvalidConfig, "", "validator selection is empty")
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, err := r.catalog.Lookup(n); err != nil {
			return nil, err
		}
		want[n] = struct{}{}
	}
	selected := make([]catalog.Entry, 0, len(want))
	for _, e := range r.catalog.All() {
		if _, ok := want[e.Name()]; ok {
			selected = append(selected, e)
		}
	}
	return r.run(ctx, selected, thorough), nil
}

func (r *Runner) run(ctx context.Context, entries []catalog.Entry, thorough bool) *Summary {
	s := &Summary{Thorough: thorough, Aggregate: true, Results: make([]Result, 0, len(entries))}
	start := time.Now()
	for _, e := range entries {
		res := r.runEntry(ctx, e, thorough)
		s.Results = append(s.Results, res)
	}
	for _, res := range s.Results {
		s.Aggregate = s.Aggregate && res.Passed
	}
	passed, failed := s.Counts()
	r.logger.Info("run complete",
		"passed", passed,
		"failed", failed,
		"aggregate", s.Aggregate,
		"thorough", thorough,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return s
}

func (r *Runner) runEntry(ctx context.Context, e catalog.Entry, thorough bool) Result {
	if err := ctx.Err(); err != nil {
		r.logger.Warn("skipped", "validator", e.Name(), "reason", err)
		return Result{Name: e.Name(), Message: "not started: " + err.Error(), Class: valerr.RunCanceled}
	}

	r.logger.Debug("running", "validator", e.Name(), "kind", e.Kind())
	start := time.Now()
	var res Result
	if r.timeout > 0 {
		res = r.invokeWithDeadline(ctx, e, thorough)
	} else {
		res = invoke(e, thorough)
	}
	elapsed := time.Since(start).Round(time.Microsecond)

	if res.Passed {
		r.logger.Info("passed", "validator", e.Name(), "elapsed", elapsed)
	} else {
		r.logger.Warn("FAILED", "validator", e.Name(), "class", res.Class, "message", res.Message, "elapsed", elapsed)
	}
	return res
}

// invokeWithDeadline moves the validator onto its own goroutine so the
// runner can stop waiting. A timed-out validator keeps running until it
// returns; its result is dropped.
func (r *Runner) invokeWithDeadline(ctx context.Context, e catalog.Entry, thorough bool) Result {
	done := make(chan Result, 1)
	go func() {
		done <- invoke(e, thorough)
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res
	case <-timer.C:
		return Result{
			Name:    e.Name(),
			Message: fmt.Sprintf("did not finish within %s", r.timeout),
			Class:   valerr.ValidatorTimeout,
		}
	case <-ctx.Done():
		return Result{
			Name:    e.Name(),
			Message: "canceled while running: " + ctx.Err().Error(),
			Class:   valerr.RunCanceled,
		}
	}
}

func invoke(e catalog.Entry, thorough bool) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{Name: e.Name(), Message: fmt.Sprintf("panic: %v", p), Class: valerr.ValidatorPanic}
		}
	}()

	ok, err := e.Run(thorough)
	switch {
	case err != nil:
		class, classified := valerr.ClassOf(err)
		if !classified {
			class = valerr.ValidatorFailure
		}
		return Result{Name: e.Name(), Message: err.Error(), Class: class}
	case !ok:
		return Result{Name: e.Name(), Message: failedMessage, Class: valerr.ValidatorFailure}
	default:
		return Result{Name: e.Name(), Passed: true}
	}
}
