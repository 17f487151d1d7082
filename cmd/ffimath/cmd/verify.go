package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pengelbrecht/ffimath/internal/config"
	"github.com/pengelbrecht/ffimath/internal/conformance"
	"github.com/pengelbrecht/ffimath/internal/tui"
	"github.com/pengelbrecht/ffimath/internal/watch"
)

// ErrVerifyFailed is returned when at least one case or property failed.
var ErrVerifyFailed = errors.New("verification failed")

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a backend against the documented behaviour",
	Long: `Check a backend against the documented behaviour.

Runs the built-in cases (plus any from --cases or the config file) and the
algebraic properties. Every case is called --repeat times across --concurrency
goroutines; results that differ between calls fail the purity check.

Without --lib the in-process implementation is checked.

Examples:
  # Check the in-process implementation
  ffimath verify

  # Check a build, hammering it from 16 goroutines
  ffimath verify --lib ./dist/libffimath.so --concurrency 16 --repeat 100

  # Re-run whenever the cases file or library changes
  ffimath verify --lib ./dist/libffimath.so --cases cases.json --watch`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runVerify,
}

var (
	verifyLib         string
	verifyCases       string
	verifyConcurrency int
	verifyRepeat      int
	verifyWatch       bool
	verifyJSON        bool
	verifyAll         bool
)

func init() {
	verifyCmd.Flags().StringVar(&verifyLib, "lib", "", "shared library to load instead of the in-process implementation")
	verifyCmd.Flags().StringVar(&verifyCases, "cases", "", "JSON file with extra cases")
	verifyCmd.Flags().IntVarP(&verifyConcurrency, "concurrency", "c", 0, "concurrent callers (default from config, 4)")
	verifyCmd.Flags().IntVarP(&verifyRepeat, "repeat", "n", 0, "calls per case (default from config, 3)")
	verifyCmd.Flags().BoolVarP(&verifyWatch, "watch", "w", false, "re-run when the cases file or library changes")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "output as JSON")
	verifyCmd.Flags().BoolVarP(&verifyAll, "all", "a", false, "show passing cases too")

	rootCmd.AddCommand(verifyCmd)
}

// verifyJob holds everything needed to repeat a run.
type verifyJob struct {
	cfg       config.Config
	lib       string
	casesPath string
	runner    *conformance.Runner
}

func newVerifyJob(cfg config.Config, logger *slog.Logger) (*verifyJob, error) {
	concurrency := verifyConcurrency
	if concurrency == 0 {
		concurrency = cfg.Verify.GetConcurrency()
	}
	repeat := verifyRepeat
	if repeat == 0 {
		repeat = cfg.Verify.GetRepeat()
	}
	if concurrency < 0 || repeat < 0 {
		return nil, usageError{errors.New("--concurrency and --repeat must be positive")}
	}

	casesPath := verifyCases
	if casesPath == "" {
		casesPath = cfg.Verify.GetCases()
	}
	lib := verifyLib
	if lib == "" {
		lib = cfg.LibraryPath()
	}

	return &verifyJob{
		cfg:       cfg,
		lib:       lib,
		casesPath: casesPath,
		runner: conformance.NewRunner(
			conformance.WithConcurrency(concurrency),
			conformance.WithRepeat(repeat),
			conformance.WithTolerance(cfg.Verify.GetTolerance()),
			conformance.WithLogger(logger),
		),
	}, nil
}

// run loads cases and the backend fresh, so edits and rebuilds are picked up.
func (j *verifyJob) run(ctx context.Context) (*conformance.Report, error) {
	cases := conformance.DefaultCases()
	if j.casesPath != "" {
		extra, err := conformance.LoadCases(j.casesPath)
		if err != nil {
			return nil, err
		}
		cases = append(cases, extra...)
	}

	backend, name, closeBackend, err := openBackend(j.cfg, j.lib)
	if err != nil {
		return nil, err
	}
	defer closeBackend()

	return j.runner.Run(ctx, name, backend, cases, conformance.DefaultProperties())
}

// watchPaths returns the files whose changes trigger a re-run.
func (j *verifyJob) watchPaths() []string {
	var paths []string
	for _, p := range []string{j.casesPath, j.lib} {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		paths = append(paths, p)
	}
	return paths
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if verifyWatch && verifyJSON {
		return usageError{errors.New("--watch cannot be combined with --json")}
	}
	if verifyWatch {
		// The TUI owns the terminal; keep log lines from tearing it.
		slog.SetDefault(slog.New(slog.DiscardHandler))
	}

	job, err := newVerifyJob(cfg, slog.Default())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if verifyWatch {
		return watchVerify(ctx, cfg, job)
	}

	report, err := job.run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if verifyJSON {
		if err := json.NewEncoder(out).Encode(report); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
	} else {
		fmt.Fprintln(out, tui.RenderReport(report, verifyAll))
	}

	if !report.OK() {
		return ErrVerifyFailed
	}
	return nil
}

func watchVerify(ctx context.Context, cfg config.Config, job *verifyJob) error {
	paths := job.watchPaths()
	if len(paths) == 0 {
		return usageError{errors.New("--watch needs --cases or --lib")}
	}

	w := watch.New(paths,
		watch.WithDebounce(cfg.Verify.GetWatchDebounce()),
		watch.WithLogger(slog.Default()),
	)
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to watch %v: %w", paths, err)
	}
	defer w.Stop()

	title := job.lib
	if title == "" {
		title = "local (in-process)"
	}
	p := tea.NewProgram(tui.NewModel(title), tea.WithContext(ctx))

	go func() {
		send := func(report *conformance.Report, err error) {
			if err != nil {
				p.Send(tui.ErrMsg{Err: err})
				return
			}
			p.Send(tui.ReportMsg{Report: report, At: time.Now()})
		}

		send(job.run(ctx))
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events():
				if !ok {
					return
				}
				p.Send(tui.RunStartedMsg{Reason: filepath.Base(ev.Path) + " changed"})
				send(job.run(ctx))
			}
		}
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
