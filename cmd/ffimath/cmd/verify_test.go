package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/pengelbrecht/ffimath/internal/abi"
	"github.com/pengelbrecht/ffimath/internal/calculator"
	"github.com/pengelbrecht/ffimath/internal/config"
)

func TestVerifyJobLogsToGivenLogger(t *testing.T) {
	t.Setenv(config.EnvLibrary, "")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	job, err := newVerifyJob(config.Default(), logger)
	if err != nil {
		t.Fatalf("newVerifyJob: %v", err)
	}
	if _, err := job.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(buf.String(), "conformance run finished") {
		t.Fatalf("expected runner log in given logger, got %q", buf.String())
	}
}

func TestWatchModeSilencesDefaultLogger(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })
	t.Setenv(config.EnvLibrary, "")
	t.Chdir(t.TempDir())

	// No --cases or --lib: the job is built, then watch mode refuses to start.
	err := Run([]string{"verify", "--watch"})
	if !IsUsageError(err) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if slog.Default().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected watch mode to discard logging")
	}
}

type fakeNative struct{}

func (fakeNative) Call(sym abi.Symbol, args []abi.Value) (abi.Value, error) {
	return abi.Value{}, nil
}

func TestRefuseNative(t *testing.T) {
	trap := calculator.CheckGCD(math.MinInt32, -1)
	quirk := calculator.CheckFactorial(21)

	cases := []struct {
		name    string
		backend abi.Backend
		err     error
		want    bool
	}{
		{"native trap", fakeNative{}, trap, true},
		{"native quirk", fakeNative{}, quirk, false},
		{"local trap", abi.Local{}, trap, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := refuseNative(tc.backend, tc.err); got != tc.want {
				t.Errorf("refuseNative = %v, want %v", got, tc.want)
			}
		})
	}
}
