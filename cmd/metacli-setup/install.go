package main

import (
	"github.com/spf13/cobra"

	"github.com/metacli/setup/internal/domain/detect"
	"github.com/metacli/setup/internal/domain/plan"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install MetaCLI on this machine",
	Long: `Install places the selected components, provisions runtime
dependencies, and registers the installation.

Fails if a healthy installation already exists; use repair or modify
instead. A broken leftover installation is replaced.`,
	RunE: runInstall,
}

var (
	installDir       string
	installNoGui     bool
	installNoCli     bool
	installDesktop   bool
	installStartMenu bool
	installPath      bool
)

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().StringVarP(&installDir, "dir", "d", "", "install directory (default: platform-specific)")
	installCmd.Flags().BoolVar(&installNoGui, "no-gui", false, "skip the GUI executable")
	installCmd.Flags().BoolVar(&installNoCli, "no-cli", false, "skip the CLI executable")
	installCmd.Flags().BoolVar(&installDesktop, "desktop-shortcut", true, "create a desktop shortcut")
	installCmd.Flags().BoolVar(&installStartMenu, "start-menu-shortcut", true, "create a start menu shortcut")
	installCmd.Flags().BoolVar(&installPath, "path", true, "add the install directory to PATH")
}

func runInstall(_ *cobra.Command, _ []string) error {
	desired := detect.NewComponents()
	desired[detect.ComponentGui] = !installNoGui
	desired[detect.ComponentCli] = !installNoCli
	desired[detect.ComponentDesktopShortcut] = installDesktop
	desired[detect.ComponentStartMenuShortcut] = installStartMenu
	desired[detect.ComponentPathEntry] = installPath

	return runLifecycle(plan.ModeInstall, desired, plan.Options{InstallDir: installDir})
}
