package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/metacli/setup/internal/adapters/command"
	"github.com/metacli/setup/internal/adapters/filesystem"
	"github.com/metacli/setup/internal/adapters/keystore"
	"github.com/metacli/setup/internal/adapters/lockfile"
	"github.com/metacli/setup/internal/adapters/logging"
	"github.com/metacli/setup/internal/domain/controller"
	"github.com/metacli/setup/internal/domain/deps"
	"github.com/metacli/setup/internal/domain/detect"
	"github.com/metacli/setup/internal/domain/manifest"
	"github.com/metacli/setup/internal/domain/plan"
	"github.com/metacli/setup/internal/domain/platform"
	"github.com/metacli/setup/internal/domain/report"
	"github.com/metacli/setup/internal/domain/sysintegration"
	"github.com/metacli/setup/internal/ports"
)

var (
	// Global flags
	manifestPath string
	verbose      bool
	jsonLog      bool
	systemScope  bool
	depTimeout   time.Duration
)

// lockFileName is the well-known instance lock shared by every invocation,
// regardless of scope. The lock lives in the temp directory so that user and
// system runs exclude each other too.
const lockFileName = "metacli-setup.lock"

var rootCmd = &cobra.Command{
	Use:   "metacli-setup",
	Short: "Install, repair, modify, or uninstall MetaCLI",
	Long: `metacli-setup manages the MetaCLI installation on this machine.

It detects what is currently installed, plans the steps for the requested
operation, and executes them with progress reporting. Interrupting a run
(Ctrl+C) cancels it after the current step finishes.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command and prints any terminal error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", manifest.DefaultFileName, "path to the product manifest")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "emit operational logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&systemScope, "system", false, "operate on the machine-wide installation")
	rootCmd.PersistentFlags().DurationVar(&depTimeout, "dep-timeout", deps.DefaultInstallTimeout, "timeout for each dependency install command")

	rootCmd.AddCommand(versionCmd)
}

// engine bundles the wired collaborators for one invocation.
type engine struct {
	paths      *platform.Paths
	man        *manifest.Manifest
	store      *keystore.INIStore
	integrator *sysintegration.Integrator
	detector   *detect.Detector
	controller *controller.Controller
	reports    *report.Writer
	logger     ports.Logger
}

// buildEngine wires the adapters and domain services for the selected scope.
func buildEngine(presenter controller.Presenter) (*engine, error) {
	scope := ports.ScopeUser
	if systemScope {
		scope = ports.ScopeSystem
	}

	paths, err := platform.NewPaths(scope)
	if err != nil {
		return nil, fmt.Errorf("resolve platform paths: %w", err)
	}

	man, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	level := ports.LevelWarn
	if verbose {
		level = ports.LevelDebug
	}
	logger := logging.NewConsoleLogger(
		logging.WithOutput(os.Stderr),
		logging.WithLevel(level),
		logging.WithJSONFormat(jsonLog),
	)

	fs := filesystem.NewRealFileSystem()
	store := keystore.NewINIStore(paths.StoreFile())
	integrator := sysintegration.New(store, fs, paths)
	runner := command.NewRealRunner()
	depsManager := deps.NewManager(man.DependencyTool, runner, logger).WithInstallTimeout(depTimeout)
	detector := detect.New(integrator, fs, man.Executables.Gui, man.Executables.Cli, logger)
	planner := plan.NewPlanner(integrator, depsManager, fs, man, paths)
	ctrl := controller.New(integrator, detector, planner, paths, presenter, logger)

	return &engine{
		paths:      paths,
		man:        man,
		store:      store,
		integrator: integrator,
		detector:   detector,
		controller: ctrl,
		reports:    report.NewWriter(filepath.Join(filepath.Dir(paths.StoreFile()), "reports")),
		logger:     logger,
	}, nil
}

// runLifecycle executes one mode end to end and persists the run report.
func runLifecycle(mode plan.Mode, desired detect.Components, opts plan.Options) error {
	lock, err := lockfile.Acquire(filepath.Join(os.TempDir(), lockFileName))
	if err != nil {
		if errors.Is(err, lockfile.ErrHeld) {
			return errors.New("another metacli-setup instance is already running")
		}
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	defer func() { _ = lock.Release() }()

	presenter := newConsolePresenter(os.Stdout)
	presenter.watchInterrupts()
	defer presenter.stopWatching()

	eng, err := buildEngine(presenter)
	if err != nil {
		return err
	}

	res, runErr := eng.controller.Run(context.Background(), mode, desired, opts)
	if res != nil {
		if path, werr := eng.reports.Write(report.FromResult(res)); werr != nil {
			eng.logger.Warn(context.Background(), "report not written", ports.F("error", werr.Error()))
		} else if verbose {
			fmt.Fprintf(os.Stdout, "Report: %s\n", path)
		}
	}
	return runErr
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var runErr *controller.RunError
	if errors.As(err, &runErr) {
		if verbose {
			return runErr.Format()
		}
		msg := runErr.Error()
		if runErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", runErr.Suggestion)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}
