package conformance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pengelbrecht/ffimath/internal/abi"
)

// Runner evaluates cases and properties against a backend.
type Runner struct {
	concurrency int
	repeat      int
	tolerance   float64
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency sets the number of concurrent callers.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRepeat sets how many times each case is called.
func WithRepeat(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.repeat = n
		}
	}
}

// WithTolerance sets the float tolerance for cases without their own.
func WithTolerance(t float64) Option {
	return func(r *Runner) {
		r.tolerance = t
	}
}

// WithLogger sets the logger for the runner.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner with one caller, one repetition and a 1e-6 tolerance
// unless overridden.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		concurrency: 1,
		repeat:      1,
		tolerance:   1e-6,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of one case.
type Result struct {
	Case   Case      `json:"case"`
	Got    abi.Value `json:"got"`
	Passed bool      `json:"passed"`
	// Pure is false when repeated calls disagreed.
	Pure  bool   `json:"pure"`
	Error string `json:"error,omitempty"`
}

// PropertyResult is the outcome of one property.
type PropertyResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Error  string `json:"error,omitempty"`
}

// Report summarises a run.
type Report struct {
	Backend    string           `json:"backend"`
	Results    []Result         `json:"results"`
	Properties []PropertyResult `json:"properties"`
	Passed     int              `json:"passed"`
	Failed     int              `json:"failed"`
	Calls      int              `json:"calls"`
	Elapsed    time.Duration    `json:"elapsed_ns"`
}

// OK reports whether every case and property passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Summary returns a one-line description such as "38 passed, 0 failed (412 calls in 3ms)".
func (r *Report) Summary() string {
	return fmt.Sprintf("%d passed, %d failed (%d calls in %s)", r.Passed, r.Failed, r.Calls, r.Elapsed.Round(time.Microsecond))
}

type outcome struct {
	got abi.Value
	err error
}

// Run calls every case repeat times, spread across the configured number of
// goroutines, then checks the properties. Cases are validated before any call.
// It returns an error only for invalid cases or a cancelled context; failing
// cases are reported in the Report.
func (r *Runner) Run(ctx context.Context, name string, backend abi.Backend, cases []Case, props []Property) (*Report, error) {
	start := time.Now()

	compiledCases := make([]compiled, len(cases))
	for i, c := range cases {
		cc, err := compile(c)
		if err != nil {
			return nil, err
		}
		compiledCases[i] = cc
	}

	outcomes := make([][]outcome, len(compiledCases))
	for i := range outcomes {
		outcomes[i] = make([]outcome, r.repeat)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	// Repetitions are the outer loop so the same case runs on different goroutines.
	for rep := 0; rep < r.repeat; rep++ {
		for i := range compiledCases {
			rep, i := rep, i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				c := compiledCases[i]
				got, err := backend.Call(c.sym, c.args)
				outcomes[i][rep] = outcome{got: got, err: err}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("conformance run: %w", err)
	}

	report := &Report{
		Backend: name,
		Results: make([]Result, len(compiledCases)),
		Calls:   len(compiledCases) * r.repeat,
	}
	for i, c := range compiledCases {
		res := r.evaluate(c, outcomes[i])
		if res.Passed {
			report.Passed++
		} else {
			report.Failed++
			r.logger.Debug("case failed", "case", c.Name, "got", res.Got.String(), "want", c.Want, "error", res.Error)
		}
		report.Results[i] = res
	}

	for _, p := range props {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("conformance run: %w", err)
		}
		pr := PropertyResult{Name: p.Name, Passed: true}
		if err := p.Check(backend); err != nil {
			pr.Passed = false
			pr.Error = err.Error()
			r.logger.Debug("property failed", "property", p.Name, "error", err)
		}
		if pr.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Properties = append(report.Properties, pr)
	}

	report.Elapsed = time.Since(start)
	r.logger.Info("conformance run finished", "backend", name, "passed", report.Passed, "failed", report.Failed, "elapsed", report.Elapsed)
	return report, nil
}

func (r *Runner) evaluate(c compiled, outs []outcome) Result {
	res := Result{Case: c.Case, Pure: true}
	first := outs[0]
	res.Got = first.got
	if first.err != nil {
		res.Error = first.err.Error()
		return res
	}

	for _, o := range outs[1:] {
		if o.err != nil {
			res.Error = o.err.Error()
			return res
		}
		if !o.got.Identical(first.got) {
			res.Pure = false
		}
	}
	if !res.Pure {
		res.Error = "repeated calls returned different results"
		return res
	}

	tolerance := r.tolerance
	if c.Tolerance != nil {
		tolerance = *c.Tolerance
	}
	if !matches(first.got, c.want, tolerance) {
		res.Error = fmt.Sprintf("got %s, want %s", first.got, c.Want)
		return res
	}
	res.Passed = true
	return res
}

func matches(got, want abi.Value, tolerance float64) bool {
	if got.Kind != want.Kind {
		return false
	}
	if want.Kind != abi.Float64 {
		return got.Identical(want)
	}
	if want.IsNaN() {
		return got.IsNaN()
	}
	if math.IsInf(want.F, 0) {
		return got.F == want.F
	}
	return math.Abs(got.F-want.F) <= tolerance
}
