package main

import (
	"github.com/spf13/cobra"

	"github.com/metacli/setup/internal/domain/plan"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove MetaCLI from this machine",
	Long: `Uninstall removes shortcuts, the PATH entry, the installed files,
and the installation record, in that order. With --keep-user-data the
user data subfolder inside the install directory survives.`,
	RunE: runUninstall,
}

var uninstallKeepUserData bool

func init() {
	rootCmd.AddCommand(uninstallCmd)

	uninstallCmd.Flags().BoolVar(&uninstallKeepUserData, "keep-user-data", false, "preserve the user data subfolder")
}

func runUninstall(_ *cobra.Command, _ []string) error {
	return runLifecycle(plan.ModeUninstall, nil, plan.Options{KeepUserData: uninstallKeepUserData})
}
