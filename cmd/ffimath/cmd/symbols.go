package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/ffimath/internal/abi"
	"github.com/pengelbrecht/ffimath/internal/styles"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List the exported symbols",
	Long: `List the exported symbols and their signatures.

Examples:
  # Signature table
  ffimath symbols

  # C header for host bindings
  ffimath symbols --header > ffimath.h

  # Output as JSON
  ffimath symbols --json`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runSymbols,
}

var (
	symbolsHeader bool
	symbolsJSON   bool
)

func init() {
	symbolsCmd.Flags().BoolVar(&symbolsHeader, "header", false, "print a C header")
	symbolsCmd.Flags().BoolVar(&symbolsJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(symbolsCmd)
}

func runSymbols(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if symbolsHeader {
		fmt.Fprint(out, abi.Header(cfg.SymbolPrefix))
		return nil
	}

	syms := abi.Symbols()
	if symbolsJSON {
		payload := make([]map[string]any, len(syms))
		for i, s := range syms {
			payload[i] = map[string]any{
				"name":      cfg.SymbolPrefix + s.Name,
				"signature": s.Signature(),
				"params":    s.Params,
				"result":    s.Result,
				"doc":       s.Doc,
			}
		}
		if err := json.NewEncoder(out).Encode(payload); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}

	width := 0
	for _, s := range syms {
		width = max(width, len(s.Signature()))
	}
	lines := make([]string, len(syms))
	for i, s := range syms {
		lines[i] = styles.PadRight(s.Signature(), width+2) + styles.RenderDim(s.Doc)
	}
	fmt.Fprintln(out, strings.Join(lines, "\n"))
	return nil
}
