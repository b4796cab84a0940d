package main

import (
	"github.com/spf13/cobra"

	"github.com/metacli/setup/internal/domain/detect"
	"github.com/metacli/setup/internal/domain/plan"
)

var modifyCmd = &cobra.Command{
	Use:   "modify",
	Short: "Change the integration components of an installation",
	Long: `Modify reconciles shortcuts and the PATH entry with the given
flags. The flags describe the full desired set: a flag left at false
removes that component. The installed executables are never touched;
use install or uninstall for those.`,
	RunE: runModify,
}

var (
	modifyDesktop   bool
	modifyStartMenu bool
	modifyPath      bool
)

func init() {
	rootCmd.AddCommand(modifyCmd)

	modifyCmd.Flags().BoolVar(&modifyDesktop, "desktop-shortcut", false, "keep a desktop shortcut")
	modifyCmd.Flags().BoolVar(&modifyStartMenu, "start-menu-shortcut", false, "keep a start menu shortcut")
	modifyCmd.Flags().BoolVar(&modifyPath, "path", false, "keep the install directory on PATH")
}

func runModify(_ *cobra.Command, _ []string) error {
	desired := detect.NewComponents()
	desired[detect.ComponentDesktopShortcut] = modifyDesktop
	desired[detect.ComponentStartMenuShortcut] = modifyStartMenu
	desired[detect.ComponentPathEntry] = modifyPath

	return runLifecycle(plan.ModeModify, desired, plan.Options{})
}
