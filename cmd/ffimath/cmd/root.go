package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pengelbrecht/ffimath/internal/abi"
	"github.com/pengelbrecht/ffimath/internal/calculator"
	"github.com/pengelbrecht/ffimath/internal/config"
	"github.com/pengelbrecht/ffimath/internal/native"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=v1.2.3".
var Version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ffimath",
	Short: "Call, verify and serve the libffimath exports",
	Long: `ffimath is the companion tool for libffimath, a shared library exporting nine
arithmetic functions with C linkage for FFI test harnesses.

It calls the functions by symbol name, prints the ABI and a C header, checks a
build (or any library exporting the same symbols) against the documented
behaviour, and serves the functions over WebSocket.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.FileName, "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})
}

// usageError marks errors caused by invalid invocation.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// IsUsageError reports whether err was caused by invalid arguments or flags.
func IsUsageError(err error) bool {
	var ue usageError
	if errors.As(err, &ue) {
		return true
	}
	return err != nil && strings.HasPrefix(err.Error(), "unknown command")
}

// usageArgs wraps a positional argument validator so its errors count as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// Run executes the command tree with args. Flags are reset first so Run can
// be called repeatedly in one process.
func Run(args []string) error {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openBackend returns the native library named by libFlag or the config, or
// the in-process implementation when neither names one. The returned close
// function must always be called.
func openBackend(cfg config.Config, libFlag string) (abi.Backend, string, func(), error) {
	path := libFlag
	if path == "" {
		path = cfg.LibraryPath()
	}
	if path == "" {
		return abi.Local{}, "local (in-process)", func() {}, nil
	}

	lib, err := native.Open(path, cfg.SymbolPrefix)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to load library: %w", err)
	}
	slog.Debug("loaded library", "path", path, "prefix", cfg.SymbolPrefix)
	return lib, path, func() { _ = lib.Close() }, nil
}

// refuseNative reports whether a precondition violation must stop the call
// because backend is a loaded library that would abort on it.
func refuseNative(backend abi.Backend, err error) bool {
	_, local := backend.(abi.Local)
	return !local && calculator.IsTrap(err)
}
