package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the setup program version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("metacli-setup %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
		if verbose {
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
			fmt.Printf("  go:     %s\n", runtime.Version())
		}
	},
}
