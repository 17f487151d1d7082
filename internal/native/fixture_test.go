//go:build darwin || linux

package native

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pengelbrecht/ffimath/internal/abi"
	"github.com/pengelbrecht/ffimath/internal/conformance"
)

// fixtureSource mirrors the exports in C with a rust_ prefix. Like a Rust or
// C build, its gcd traps on MinInt32 % -1.
const fixtureSource = `
#include <math.h>
#include <stdbool.h>
#include <stdint.h>

static int32_t abs32(int32_t n) { return n < 0 ? (int32_t)(0u - (uint32_t)n) : n; }

int32_t rust_add(int32_t a, int32_t b) { return (int32_t)((uint32_t)a + (uint32_t)b); }
int32_t rust_multiply(int32_t a, int32_t b) { return (int32_t)((uint32_t)a * (uint32_t)b); }

int64_t rust_factorial(int32_t n) {
	if (n <= 1) return 1;
	uint64_t r = 1;
	for (int64_t i = 2; i <= n; i++) r *= (uint64_t)i;
	return (int64_t)r;
}

int64_t rust_fibonacci(int32_t n) {
	if (n == 0) return 0;
	if (n == 1) return 1;
	uint64_t a = 0, b = 1;
	for (int64_t i = 2; i <= n; i++) { uint64_t t = a + b; a = b; b = t; }
	return (int64_t)b;
}

bool rust_is_prime(int32_t n) {
	if (n < 2) return false;
	int32_t limit = (int32_t)sqrt((double)n) + 1;
	for (int32_t i = 2; i < limit; i++) {
		if (n % i == 0) return false;
	}
	return true;
}

int32_t rust_gcd(int32_t a, int32_t b) {
	while (b != 0) { int32_t t = a % b; a = b; b = t; }
	return abs32(a);
}

int32_t rust_lcm(int32_t a, int32_t b) {
	if (a == 0 || b == 0) return 0;
	return abs32(rust_multiply(a, b)) / rust_gcd(a, b);
}

double rust_circle_area(double radius) { return 3.14159265358979323846 * radius * radius; }
double rust_sqrt(double x) { return sqrt(x); }
`

const partialSource = `
#include <stdint.h>
int32_t rust_add(int32_t a, int32_t b) { return a + b; }
`

// buildFixture compiles src into a shared library, skipping without a C compiler.
func buildFixture(t *testing.T, name, src string) string {
	t.Helper()
	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("no C compiler")
	}
	dir := t.TempDir()
	srcPath := filepath.Join(dir, name+".c")
	if err := os.WriteFile(srcPath, []byte(src), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	libPath := filepath.Join(dir, "lib"+name+".so")
	out, err := exec.Command(cc, "-shared", "-fPIC", "-O2", "-o", libPath, srcPath, "-lm").CombinedOutput()
	if err != nil {
		t.Fatalf("cc: %v\n%s", err, out)
	}
	return libPath
}

func TestFixtureMatchesLocal(t *testing.T) {
	lib, err := Open(buildFixture(t, "fixture", fixtureSource), "rust_")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer lib.Close()

	cases := []struct {
		symbol string
		args   []abi.Value
	}{
		{"add", []abi.Value{abi.Int32Value(2147483647), abi.Int32Value(1)}},
		{"multiply", []abi.Value{abi.Int32Value(-6), abi.Int32Value(7)}},
		{"factorial", []abi.Value{abi.Int32Value(20)}},
		{"fibonacci", []abi.Value{abi.Int32Value(92)}},
		{"is_prime", []abi.Value{abi.Int32Value(97)}},
		{"is_prime", []abi.Value{abi.Int32Value(2147395600)}},
		{"gcd", []abi.Value{abi.Int32Value(-12), abi.Int32Value(18)}},
		{"lcm", []abi.Value{abi.Int32Value(4), abi.Int32Value(6)}},
		{"circle_area", []abi.Value{abi.Float64Value(2.5)}},
		{"sqrt", []abi.Value{abi.Float64Value(2.25)}},
		{"sqrt", []abi.Value{abi.Float64Value(-1)}},
	}

	for _, tc := range cases {
		t.Run(tc.symbol, func(t *testing.T) {
			sym, err := abi.Lookup(tc.symbol, "")
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			want, err := abi.Local{}.Call(sym, tc.args)
			if err != nil {
				t.Fatalf("local: %v", err)
			}
			got, err := lib.Call(sym, tc.args)
			if err != nil {
				t.Fatalf("native: %v", err)
			}
			if got.Kind != want.Kind {
				t.Fatalf("kind = %s, want %s", got.Kind, want.Kind)
			}
			if want.IsNaN() {
				if !got.IsNaN() {
					t.Errorf("got %v, want NaN", got)
				}
				return
			}
			if !got.Identical(want) {
				t.Errorf("native = %v, local = %v", got, want)
			}
		})
	}
}

func TestFixturePassesConformance(t *testing.T) {
	lib, err := Open(buildFixture(t, "fixture", fixtureSource), "rust_")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer lib.Close()

	r := conformance.NewRunner(
		conformance.WithConcurrency(4),
		conformance.WithRepeat(2),
		conformance.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	report, err := r.Run(context.Background(), lib.Path(), lib, conformance.DefaultCases(), conformance.DefaultProperties())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
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

func TestOpenReportsMissingSymbols(t *testing.T) {
	t.Run("wrong prefix", func(t *testing.T) {
		_, err := Open(buildFixture(t, "fixture", fixtureSource), "")
		if !errors.Is(err, ErrMissingSymbols) {
			t.Fatalf("expected ErrMissingSymbols, got %v", err)
		}
		// sqrt itself resolves through the fixture's libm dependency.
		for _, name := range []string{"add", "circle_area", "is_prime"} {
			if !strings.Contains(err.Error(), name) {
				t.Errorf("expected %s in %q", name, err)
			}
		}
	})

	t.Run("partial library", func(t *testing.T) {
		_, err := Open(buildFixture(t, "partial", partialSource), "rust_")
		if !errors.Is(err, ErrMissingSymbols) {
			t.Fatalf("expected ErrMissingSymbols, got %v", err)
		}
		msg := err.Error()
		if !strings.Contains(msg, "rust_gcd") || !strings.Contains(msg, "rust_sqrt") {
			t.Errorf("expected missing exports named in %q", msg)
		}
		if strings.Contains(msg, "rust_add,") {
			t.Errorf("rust_add is exported but reported missing: %q", msg)
		}
	})
}
