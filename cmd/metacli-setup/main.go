// Package main provides the entry point for the metacli-setup CLI.
package main

import (
	"errors"
	"os"

	"github.com/metacli/setup/internal/domain/controller"
)

// Exit codes. The caller can distinguish a failed run from a cancelled one
// and from a privilege problem.
const (
	exitOK        = 0
	exitFailed    = 1
	exitCancelled = 2
	exitPrivilege = 3
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
	os.Exit(exitOK)
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, controller.ErrInsufficientPrivilege):
		return exitPrivilege
	case errors.Is(err, controller.ErrCancelled):
		return exitCancelled
	default:
		return exitFailed
	}
}
