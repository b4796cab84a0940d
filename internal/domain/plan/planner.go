package plan

import (
	"fmt"

	"github.com/metacli/setup/internal/domain/deps"
	"github.com/metacli/setup/internal/domain/detect"
	"github.com/metacli/setup/internal/domain/manifest"
	"github.com/metacli/setup/internal/domain/platform"
	"github.com/metacli/setup/internal/ports"
)

// Options carries per-run planning inputs.
type Options struct {
	// InstallDir is the target directory for Install. Other modes use the
	// record's install path. Empty means the platform default.
	InstallDir string

	// KeepUserData preserves the reserved user-data subfolder across
	// Uninstall.
	KeepUserData bool
}

// Planner builds mode-specific plans. Building a plan never mutates the
// machine; the steps close over the collaborators that will.
type Planner struct {
	integrator Integrator
	deps       *deps.Manager
	fs         ports.FileSystem
	man        *manifest.Manifest
	paths      *platform.Paths
}

// NewPlanner creates a Planner.
func NewPlanner(integrator Integrator, depsManager *deps.Manager, fs ports.FileSystem, man *manifest.Manifest, paths *platform.Paths) *Planner {
	return &Planner{
		integrator: integrator,
		deps:       depsManager,
		fs:         fs,
		man:        man,
		paths:      paths,
	}
}

// Plan produces the ordered step list for mode given the current record and
// the desired component selection. Precondition violations surface as
// planning errors before anything runs.
func (p *Planner) Plan(mode Mode, record *detect.Record, desired detect.Components, opts Options) (*Plan, error) {
	switch mode {
	case ModeInstall:
		return p.planInstall(record, desired, opts)
	case ModeRepair:
		return p.planRepair(record)
	case ModeModify:
		return p.planModify(record, desired)
	case ModeUninstall:
		return p.planUninstall(record, opts)
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

// planInstall targets a machine with no (or only an orphaned) installation.
func (p *Planner) planInstall(record *detect.Record, desired detect.Components, opts Options) (*Plan, error) {
	if record != nil && !record.Broken() {
		return nil, fmt.Errorf("%w at %s (version %s)", ErrAlreadyInstalled, record.InstallPath, record.Version)
	}
	if !desired.HasExecutable() {
		return nil, fmt.Errorf("install requires at least one executable component")
	}

	dir := opts.InstallDir
	if dir == "" {
		dir = p.paths.DefaultInstallDir()
	}

	var steps []Step
	if record != nil {
		// Orphaned record: overwrite is permitted, but clear the remnant
		// first so a crash never leaves two generations mixed.
		steps = append(steps, p.removeOrphanStep())
	}

	steps = append(steps,
		p.dependencyStep(),
		p.directoryStep(dir),
		p.copyFilesStep(dir, desired, false),
	)
	if desired[detect.ComponentPathEntry] {
		steps = append(steps, p.addPathStep(dir))
	}
	if desired[detect.ComponentDesktopShortcut] {
		steps = append(steps, p.createShortcutStep(detect.ComponentDesktopShortcut, dir, desired))
	}
	if desired[detect.ComponentStartMenuShortcut] {
		steps = append(steps, p.createShortcutStep(detect.ComponentStartMenuShortcut, dir, desired))
	}
	steps = append(steps, p.writeRecordStep(dir, desired))

	return NewPlan(ModeInstall, steps), nil
}

// planRepair restores exactly what the record claims was installed. Every
// claimed component's step is present; steps whose target is already
// correct are cheap no-ops.
func (p *Planner) planRepair(record *detect.Record) (*Plan, error) {
	if record == nil {
		return nil, ErrNothingToRepair
	}

	desired := record.Claimed.Clone()
	if !desired.HasExecutable() {
		// A record claiming no executables has nothing restorable.
		return nil, fmt.Errorf("%w: record claims no components", ErrNothingToRepair)
	}
	dir := record.InstallPath

	steps := []Step{
		p.dependencyStep(),
		p.directoryStep(dir),
		p.copyFilesStep(dir, desired, true),
	}
	if desired[detect.ComponentPathEntry] {
		steps = append(steps, p.addPathStep(dir))
	}
	if desired[detect.ComponentDesktopShortcut] {
		steps = append(steps, p.createShortcutStep(detect.ComponentDesktopShortcut, dir, desired))
	}
	if desired[detect.ComponentStartMenuShortcut] {
		steps = append(steps, p.createShortcutStep(detect.ComponentStartMenuShortcut, dir, desired))
	}
	steps = append(steps, p.writeRecordStep(dir, desired))

	return NewPlan(ModeRepair, steps), nil
}

// planModify reconciles integration components with a new selection. The
// plan is the symmetric difference; core executables are never touched.
func (p *Planner) planModify(record *detect.Record, desired detect.Components) (*Plan, error) {
	if record == nil {
		return nil, ErrNothingToModify
	}
	if !record.Healthy() {
		return nil, fmt.Errorf("%w: installation is damaged, repair it first", ErrNothingToModify)
	}

	dir := record.InstallPath
	current := record.Components

	// Executables follow the record, whatever the caller asked for.
	want := desired.Clone()
	want[detect.ComponentGui] = current[detect.ComponentGui]
	want[detect.ComponentCli] = current[detect.ComponentCli]

	var steps []Step
	for _, kind := range []detect.ComponentKind{detect.ComponentDesktopShortcut, detect.ComponentStartMenuShortcut} {
		switch {
		case want[kind] && !current[kind]:
			steps = append(steps, p.createShortcutStep(kind, dir, want))
		case !want[kind] && current[kind]:
			steps = append(steps, p.removeShortcutStep(kind))
		}
	}
	switch {
	case want[detect.ComponentPathEntry] && !current[detect.ComponentPathEntry]:
		steps = append(steps, p.addPathStep(dir))
	case !want[detect.ComponentPathEntry] && current[detect.ComponentPathEntry]:
		steps = append(steps, p.removePathStep(dir))
	}

	return NewPlan(ModeModify, steps), nil
}

// planUninstall removes integration artifacts first, then files, then the
// store record, so a crash mid-uninstall leaves a re-detectable partial
// state instead of an orphaned record with nothing behind it.
func (p *Planner) planUninstall(record *detect.Record, opts Options) (*Plan, error) {
	if record == nil {
		return nil, ErrNothingToUninstall
	}

	dir := record.InstallPath
	steps := []Step{
		p.removeShortcutStep(detect.ComponentDesktopShortcut),
		p.removeShortcutStep(detect.ComponentStartMenuShortcut),
		p.removePathStep(dir),
		p.removeFilesStep(dir, opts.KeepUserData),
		p.deleteRecordStep(),
	}

	return NewPlan(ModeUninstall, steps), nil
}
