package main

import (
	"github.com/spf13/cobra"

	"github.com/metacli/setup/internal/domain/plan"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Restore a damaged installation",
	Long: `Repair restores exactly the components the installation record
claims were installed: missing files are copied back, missing shortcuts
and PATH entries are recreated. Components that are already correct are
left untouched.`,
	RunE: runRepair,
}

func init() {
	rootCmd.AddCommand(repairCmd)
}

func runRepair(_ *cobra.Command, _ []string) error {
	// Desired state comes from the record, not from flags.
	return runLifecycle(plan.ModeRepair, nil, plan.Options{})
}
