package main

import (
	"fmt"
	"os"

	"github.com/pengelbrecht/ffimath/cmd/ffimath/cmd"
)

const (
	exitSuccess = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	err := cmd.Run(args)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if cmd.IsUsageError(err) {
		return exitUsage
	}
	return exitFailure
}
