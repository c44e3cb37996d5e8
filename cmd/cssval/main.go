// Package main provides the cssval CLI for validating stylesheets with the
// W3C CSS validator.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

// Exit codes
const (
	exitOK       = 0
	exitFailed   = 1 // at least one file failed validation
	exitRunError = 2 // nothing could be validated
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(exitCode(rootCmd.ExecuteContext(ctx)))
}

// exitCode maps a command error to the process exit status. Validation
// failures were already reported, so only run errors are printed.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errValidationFailed):
		return exitFailed
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitRunError
	}
}
