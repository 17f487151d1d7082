package conformance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/pengelbrecht/ffimath/internal/abi"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// brokenBackend returns a wrong answer for one symbol.
type brokenBackend struct {
	symbol string
}

func (b brokenBackend) Call(sym abi.Symbol, args []abi.Value) (abi.Value, error) {
	v, err := abi.Local{}.Call(sym, args)
	if sym.Name == b.symbol {
		v.I++
		v.B = !v.B
		v.F += 1
	}
	return v, err
}

// driftingBackend returns a different add result on every call.
type driftingBackend struct {
	calls atomic.Int64
}

func (b *driftingBackend) Call(sym abi.Symbol, args []abi.Value) (abi.Value, error) {
	v, err := abi.Local{}.Call(sym, args)
	if sym.Name == "add" {
		v.I += b.calls.Add(1)
	}
	return v, err
}

// trappingBackend fails like a C or Rust build would on MinInt32 % -1.
type trappingBackend struct {
	traps atomic.Int64
}

func (b *trappingBackend) Call(sym abi.Symbol, args []abi.Value) (abi.Value, error) {
	if sym.Name == "gcd" {
		x, y := args[0].Int32(), args[1].Int32()
		if (x == math.MinInt32 && y == -1) || (x == -1 && y == math.MinInt32) {
			b.traps.Add(1)
			return abi.Value{}, errors.New("SIGFPE")
		}
	}
	return abi.Local{}.Call(sym, args)
}

// offByULPBackend returns the next float after the correct one.
type offByULPBackend struct{}

func (offByULPBackend) Call(sym abi.Symbol, args []abi.Value) (abi.Value, error) {
	v, err := abi.Local{}.Call(sym, args)
	if v.Kind == abi.Float64 {
		v.F = math.Nextafter(v.F, math.Inf(1))
	}
	return v, err
}

type failingBackend struct{}

func (failingBackend) Call(sym abi.Symbol, args []abi.Value) (abi.Value, error) {
	return abi.Value{}, errors.New("boom")
}

func TestDefaultCasesAreValid(t *testing.T) {
	if err := Validate(DefaultCases()); err != nil {
		t.Fatalf("default cases invalid: %v", err)
	}
}

func TestDefaultCasesCoverEveryExport(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range DefaultCases() {
		seen[c.Symbol] = true
	}
	for _, s := range abi.Symbols() {
		if !seen[s.Name] {
			t.Errorf("no default case for %s", s.Name)
		}
	}
}

func TestRunLocalPasses(t *testing.T) {
	r := NewRunner(WithConcurrency(8), WithRepeat(4), WithLogger(quietLogger()))
	report, err := r.Run(context.Background(), "local", abi.Local{}, DefaultCases(), DefaultProperties())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.OK() {
		for _, res := range report.Results {
			if !res.Passed {
				t.Errorf("case %q failed: %s", res.Case.Name, res.Error)
			}
		}
		for _, p := range report.Properties {
			if !p.Passed {
				t.Errorf("property %q failed: %s", p.Name, p.Error)
			}
		}
	}
	if want := len(DefaultCases()) * 4; report.Calls != want {
		t.Errorf("expected %d calls, got %d", want, report.Calls)
	}
	if report.Passed != len(DefaultCases())+len(DefaultProperties()) {
		t.Errorf("expected all cases and properties to pass, got %s", report.Summary())
	}
}

func TestRunDetectsWrongResults(t *testing.T) {
	cases := []struct {
		name   string
		symbol string
	}{
		{"integer", "gcd"},
		{"bool", "is_prime"},
		{"float", "circle_area"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRunner(WithLogger(quietLogger()))
			report, err := r.Run(context.Background(), "broken", brokenBackend{symbol: tc.symbol}, DefaultCases(), nil)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if report.OK() {
				t.Fatal("expected failures")
			}
			for _, res := range report.Results {
				if res.Case.Symbol == tc.symbol && res.Passed {
					t.Errorf("case %q should have failed", res.Case.Name)
				}
				if res.Case.Symbol != tc.symbol && !res.Passed {
					t.Errorf("case %q should have passed: %s", res.Case.Name, res.Error)
				}
			}
		})
	}
}

func TestRunDetectsImpureBackend(t *testing.T) {
	r := NewRunner(WithConcurrency(4), WithRepeat(3), WithLogger(quietLogger()))
	cases := []Case{{Name: "add", Symbol: "add", Args: []string{"1", "1"}, Want: "2"}}
	report, err := r.Run(context.Background(), "drifting", &driftingBackend{}, cases, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Results[0].Pure {
		t.Error("expected impure result")
	}
	if report.Results[0].Passed {
		t.Error("expected impure case to fail")
	}
}

func TestRunReportsBackendErrors(t *testing.T) {
	r := NewRunner(WithLogger(quietLogger()))
	report, err := r.Run(context.Background(), "failing", failingBackend{}, DefaultCases()[:2], DefaultProperties()[:1])
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed != 3 {
		t.Errorf("expected 3 failures, got %d", report.Failed)
	}
	if report.Results[0].Error != "boom" {
		t.Errorf("expected backend error, got %q", report.Results[0].Error)
	}
}

func TestPropertiesAvoidNativeTraps(t *testing.T) {
	b := &trappingBackend{}
	r := NewRunner(WithLogger(quietLogger()))
	report, err := r.Run(context.Background(), "trapping", b, DefaultCases(), DefaultProperties())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := b.traps.Load(); n != 0 {
		t.Fatalf("expected no gcd(MinInt32, -1) calls, got %d", n)
	}
	if !report.OK() {
		t.Fatalf("expected pass, got %s", report.Summary())
	}
}

func TestExactFloatCases(t *testing.T) {
	r := NewRunner(WithLogger(quietLogger()))
	report, err := r.Run(context.Background(), "off", offByULPBackend{}, DefaultCases(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, res := range report.Results {
		switch res.Case.Name {
		case "sqrt 4", "circle_area 0":
			if res.Passed {
				t.Errorf("case %q passed with result %s, want exact match", res.Case.Name, res.Got)
			}
		case "circle_area 1", "circle_area negative":
			if !res.Passed {
				t.Errorf("case %q should pass within tolerance: %s", res.Case.Name, res.Error)
			}
		}
	}
}

func TestRunRejectsInvalidCase(t *testing.T) {
	r := NewRunner(WithLogger(quietLogger()))
	_, err := r.Run(context.Background(), "local", abi.Local{}, []Case{{Name: "bad", Symbol: "divide", Args: []string{"1", "2"}, Want: "0"}}, nil)
	if !errors.Is(err, ErrInvalidCase) {
		t.Fatalf("expected ErrInvalidCase, got %v", err)
	}
	if !errors.Is(err, abi.ErrUnknownSymbol) {
		t.Fatalf("expected wrapped ErrUnknownSymbol, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(WithLogger(quietLogger()))
	_, err := r.Run(ctx, "local", abi.Local{}, DefaultCases(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCaseTolerance(t *testing.T) {
	loose := 0.01
	cases := []Case{{Name: "rough pi", Symbol: "circle_area", Args: []string{"1"}, Want: "3.14", Tolerance: &loose}}

	r := NewRunner(WithLogger(quietLogger()))
	report, err := r.Run(context.Background(), "local", abi.Local{}, cases, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.OK() {
		t.Fatalf("expected rough pi to pass with tolerance 0.01: %s", report.Results[0].Error)
	}

	strict := NewRunner(WithTolerance(1e-9), WithLogger(quietLogger()))
	cases[0].Tolerance = nil
	report, err = strict.Run(context.Background(), "local", abi.Local{}, cases, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.OK() {
		t.Fatal("expected rough pi to fail with runner tolerance 1e-9")
	}
}

func TestLoadCases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.json")
	body := `[
		{"name": "big gcd", "symbol": "gcd", "args": ["1071", "462"], "want": "21"},
		{"symbol": "fibonacci", "args": ["30"], "want": "832040"}
	]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write cases: %v", err)
	}

	cases, err := LoadCases(path)
	if err != nil {
		t.Fatalf("LoadCases: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[1].Name != "fibonacci#1" {
		t.Errorf("expected generated name fibonacci#1, got %q", cases[1].Name)
	}
}

func TestLoadCasesRejectsBadArity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.json")
	if err := os.WriteFile(path, []byte(`[{"symbol": "add", "args": ["1"], "want": "1"}]`), 0o644); err != nil {
		t.Fatalf("write cases: %v", err)
	}
	_, err := LoadCases(path)
	if !errors.Is(err, abi.ErrArity) {
		t.Fatalf("expected ErrArity, got %v", err)
	}
}
