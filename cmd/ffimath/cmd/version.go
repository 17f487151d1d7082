package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ffimath",
	Long:  `Print the version number of ffimath.`,
	Args:  usageArgs(cobra.NoArgs),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ffimath %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
