package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/metacli/setup/internal/domain/controller"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current installation state",
	Long: `Status detects the current installation and prints what was found,
including a health assessment. No system state is modified.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	eng, err := buildEngine(controller.NopPresenter{})
	if err != nil {
		return err
	}

	record, err := eng.detector.Detect(context.Background())
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	out := os.Stdout
	if verbose {
		fmt.Fprintf(out, "%s%s\n", labelStyle.Render("Registry:"), eng.store.Path())
	}
	if record == nil {
		fmt.Fprintln(out, mutedStyle.Render("MetaCLI is not installed."))
		return nil
	}

	fmt.Fprintf(out, "%s%s\n", labelStyle.Render("Version:"), record.Version)
	fmt.Fprintf(out, "%s%s\n", labelStyle.Render("Location:"), record.InstallPath)
	if !record.InstallDate.IsZero() {
		fmt.Fprintf(out, "%s%s\n", labelStyle.Render("Installed:"), record.InstallDate.Format("2006-01-02"))
	}
	fmt.Fprintf(out, "%s%s\n", labelStyle.Render("Components:"), componentList(record.Components))

	switch {
	case record.Healthy():
		fmt.Fprintf(out, "%s%s\n", labelStyle.Render("Health:"), successStyle.Render("healthy"))
	case record.Broken():
		fmt.Fprintf(out, "%s%s\n", labelStyle.Render("Health:"),
			errorStyle.Render("broken: no installed component could be verified"))
		fmt.Fprintln(out, mutedStyle.Render("Run install to replace this installation."))
	default:
		fmt.Fprintf(out, "%s%s\n", labelStyle.Render("Health:"), errorStyle.Render("damaged"))
		for _, kind := range record.MissingComponents() {
			fmt.Fprintf(out, "%s%s\n", labelStyle.Render(""), mutedStyle.Render("missing: "+kind.String()))
		}
		fmt.Fprintln(out, mutedStyle.Render("Run repair to restore the missing components."))
	}
	return nil
}
