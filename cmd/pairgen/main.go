package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/menta2k/pairgen/internal/config"
	"github.com/menta2k/pairgen/internal/walker"
)

// Exit codes: 0 for a run that completed, 1 for input path problems,
// 2 for configuration rejected before processing started.
const (
	exitInput  = 1
	exitConfig = 2
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalid):
		return exitConfig
	case errors.Is(err, walker.ErrNotFound), errors.Is(err, walker.ErrUnsupportedPath):
		return exitInput
	default:
		return exitInput
	}
}
