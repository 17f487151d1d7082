package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/ffimath/internal/abi"
	"github.com/pengelbrecht/ffimath/internal/styles"
)

var callCmd = &cobra.Command{
	Use:   "call [flags] <symbol> [args...]",
	Short: "Call one exported function",
	Long: `Call one exported function by symbol name and print the result.

Flags must come before the symbol so negative numbers are read as arguments.
Calls whose inputs violate a documented precondition (factorial overflow, a
negative Fibonacci index, ...) still return the library's result with a
warning, or fail with --strict. Inputs that abort C and Rust builds, such as
gcd -2147483648 -1, are never passed to a loaded library.

Examples:
  # In-process implementation
  ffimath call gcd -12 18

  # A built library
  ffimath call --lib ./dist/libffimath.so factorial 10

  # Output as JSON
  ffimath call --json sqrt -1`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: runCall,
}

var (
	callLib    string
	callStrict bool
	callJSON   bool
)

func init() {
	callCmd.Flags().StringVar(&callLib, "lib", "", "shared library to load instead of the in-process implementation")
	callCmd.Flags().BoolVar(&callStrict, "strict", false, "fail on precondition violations")
	callCmd.Flags().BoolVar(&callJSON, "json", false, "output as JSON")
	callCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sym, err := abi.Lookup(args[0], cfg.SymbolPrefix)
	if err != nil {
		return usageError{err}
	}
	values, err := abi.ParseArgs(sym, args[1:])
	if err != nil {
		return usageError{err}
	}

	backend, _, closeBackend, err := openBackend(cfg, callLib)
	if err != nil {
		return err
	}
	defer closeBackend()

	var warning string
	if err := abi.CheckPreconditions(sym, values); err != nil {
		if callStrict || refuseNative(backend, err) {
			return err
		}
		warning = err.Error()
	}

	result, err := backend.Call(sym, values)
	if err != nil {
		return fmt.Errorf("call %s: %w", sym.Name, err)
	}

	out := cmd.OutOrStdout()
	if callJSON {
		payload := map[string]any{
			"symbol": sym.Name,
			"args":   values,
			"result": result,
		}
		if warning != "" {
			payload["warning"] = warning
		}
		if err := json.NewEncoder(out).Encode(payload); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}

	argText := make([]string, len(values))
	for i, v := range values {
		argText[i] = v.String()
	}
	fmt.Fprintf(out, "%s(%s) = %s\n", sym.Name, strings.Join(argText, ", "), result)
	if warning != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), styles.RenderWarn("warning: "+warning))
	}
	return nil
}
