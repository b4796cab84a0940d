package plan

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/metacli/setup/internal/domain/detect"
	"github.com/metacli/setup/internal/domain/platform"
	"github.com/metacli/setup/internal/domain/sysintegration"
)

// Integrator is the slice of system-integration primitives the steps need.
type Integrator interface {
	WriteValue(section, name, value string) error
	WriteBool(section, name string, v bool) error
	DeleteKey(section string) error
	AddToPath(dir string) error
	RemoveFromPath(dir string) error
	IsInPath(dir string) (bool, error)
	CreateShortcut(kind sysintegration.ShortcutKind, target, installDir string) error
	RemoveShortcut(kind sysintegration.ShortcutKind) error
}

// UninstallCommand is the command recorded for the OS add/remove facility.
const UninstallCommand = "metacli-setup uninstall"

// removeOrphanStep clears a broken record's store remnants before a fresh
// install writes the new generation.
func (p *Planner) removeOrphanStep() Step {
	return Step{
		ID:          "store:remove-orphan",
		Description: "Removing orphaned installation record",
		Weight:      2,
		Apply: func(_ context.Context) error {
			for _, section := range []string{
				sysintegration.SectionUninstall,
				sysintegration.SectionComponents,
				sysintegration.SectionInstall,
			} {
				if err := p.integrator.DeleteKey(section); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// dependencyStep provisions the manifest's runtime dependencies. Failure is
// fatal to the run; nothing is rolled back because dependencies are shared
// machine state.
func (p *Planner) dependencyStep() Step {
	return Step{
		ID:          "deps:install",
		Description: "Checking and installing dependencies",
		Weight:      25,
		Apply: func(ctx context.Context) error {
			return p.deps.Install(ctx, p.man.DependencySpecs())
		},
	}
}

// directoryStep ensures the install directory exists.
func (p *Planner) directoryStep(dir string) Step {
	return Step{
		ID:          "files:directory",
		Description: "Creating installation directory",
		Weight:      5,
		Apply: func(_ context.Context) error {
			if err := p.fs.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create install directory: %w", err)
			}
			return nil
		},
		Undo: func(_ context.Context) error {
			entries, err := p.fs.ReadDir(dir)
			if err != nil || len(entries) > 0 {
				return err
			}
			return p.fs.Remove(dir)
		},
	}
}

// copyFilesStep places the selected executables and the extra payload files
// into dir. With onlyMissing set, files already present are left alone
// (repair semantics). A partial failure removes the files this invocation
// copied before reporting.
func (p *Planner) copyFilesStep(dir string, desired detect.Components, onlyMissing bool) Step {
	return Step{
		ID:          "files:copy",
		Description: "Copying application files",
		Weight:      35,
		Apply: func(ctx context.Context) error {
			var copied []string

			cleanup := func() {
				for _, path := range copied {
					_ = p.fs.Remove(path)
				}
			}

			for _, name := range p.payloadFiles(desired) {
				if err := ctx.Err(); err != nil {
					cleanup()
					return err
				}

				src := filepath.Join(p.man.PayloadDir, name)
				dst := filepath.Join(dir, name)
				if onlyMissing && p.fs.Exists(dst) {
					continue
				}
				if !p.fs.Exists(src) {
					cleanup()
					return fmt.Errorf("payload file missing: %s", src)
				}
				if err := p.fs.CopyFile(src, dst); err != nil {
					cleanup()
					return fmt.Errorf("copy %s: %w", name, err)
				}
				copied = append(copied, dst)
			}
			return nil
		},
		Undo: func(_ context.Context) error {
			for _, name := range p.payloadFiles(desired) {
				dst := filepath.Join(dir, name)
				if p.fs.Exists(dst) {
					_ = p.fs.Remove(dst)
				}
			}
			return nil
		},
	}
}

// addPathStep adds dir to the PATH list and records the claim.
func (p *Planner) addPathStep(dir string) Step {
	return Step{
		ID:          "path:add",
		Description: "Adding installation directory to PATH",
		Weight:      8,
		Apply: func(_ context.Context) error {
			if err := p.integrator.AddToPath(dir); err != nil {
				return err
			}
			return p.integrator.WriteBool(sysintegration.SectionComponents, detect.ComponentPathEntry.StoreName(), true)
		},
		Undo: func(_ context.Context) error {
			return p.integrator.RemoveFromPath(dir)
		},
	}
}

// removePathStep removes dir from the PATH list and clears the claim.
func (p *Planner) removePathStep(dir string) Step {
	return Step{
		ID:          "path:remove",
		Description: "Removing installation directory from PATH",
		Weight:      8,
		Apply: func(_ context.Context) error {
			if err := p.integrator.RemoveFromPath(dir); err != nil {
				return err
			}
			return p.integrator.WriteBool(sysintegration.SectionComponents, detect.ComponentPathEntry.StoreName(), false)
		},
	}
}

// createShortcutStep writes the shortcut artifact for kind and records the
// claim. An existing artifact at the same location is overwritten.
func (p *Planner) createShortcutStep(kind detect.ComponentKind, dir string, desired detect.Components) Step {
	shortcutKind := toShortcutKind(kind)
	return Step{
		ID:          "shortcut:create:" + shortcutKind.String(),
		Description: fmt.Sprintf("Creating %s shortcut", shortcutKind),
		Weight:      5,
		Apply: func(_ context.Context) error {
			target := p.shortcutTarget(dir, desired)
			if target == "" {
				return fmt.Errorf("no executable available as shortcut target")
			}
			if err := p.integrator.CreateShortcut(shortcutKind, target, dir); err != nil {
				return err
			}
			return p.integrator.WriteBool(sysintegration.SectionComponents, kind.StoreName(), true)
		},
		Undo: func(_ context.Context) error {
			return p.integrator.RemoveShortcut(shortcutKind)
		},
	}
}

// removeShortcutStep deletes the shortcut artifact for kind and clears the
// claim. An absent artifact is a no-op.
func (p *Planner) removeShortcutStep(kind detect.ComponentKind) Step {
	shortcutKind := toShortcutKind(kind)
	return Step{
		ID:          "shortcut:remove:" + shortcutKind.String(),
		Description: fmt.Sprintf("Removing %s shortcut", shortcutKind),
		Weight:      5,
		Apply: func(_ context.Context) error {
			if err := p.integrator.RemoveShortcut(shortcutKind); err != nil {
				return err
			}
			return p.integrator.WriteBool(sysintegration.SectionComponents, kind.StoreName(), false)
		},
	}
}

// writeRecordStep persists the full installation record: install values,
// component claims, and the uninstall entry the OS add/remove facility
// reads. Written last so the record only ever describes a finished layout.
func (p *Planner) writeRecordStep(dir string, desired detect.Components) Step {
	return Step{
		ID:          "store:write-record",
		Description: "Registering installation",
		Weight:      15,
		Apply: func(_ context.Context) error {
			installValues := map[string]string{
				sysintegration.KeyInstallPath: dir,
				sysintegration.KeyVersion:     p.man.Version,
				sysintegration.KeyInstallDate: time.Now().UTC().Format(time.RFC3339),
			}
			for name, value := range installValues {
				if err := p.integrator.WriteValue(sysintegration.SectionInstall, name, value); err != nil {
					return err
				}
			}

			for _, kind := range detect.AllComponents() {
				if err := p.integrator.WriteBool(sysintegration.SectionComponents, kind.StoreName(), desired[kind]); err != nil {
					return err
				}
			}

			uninstallValues := map[string]string{
				sysintegration.KeyDisplayName:      p.man.Name,
				sysintegration.KeyDisplayVersion:   p.man.Version,
				sysintegration.KeyPublisher:        p.man.Publisher,
				sysintegration.KeyUninstallCommand: UninstallCommand,
			}
			for name, value := range uninstallValues {
				if err := p.integrator.WriteValue(sysintegration.SectionUninstall, name, value); err != nil {
					return err
				}
			}
			return nil
		},
		Undo: func(_ context.Context) error {
			for _, section := range []string{
				sysintegration.SectionUninstall,
				sysintegration.SectionComponents,
				sysintegration.SectionInstall,
			} {
				if err := p.integrator.DeleteKey(section); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// removeFilesStep deletes the installed files. With keepUserData set, the
// reserved user-data subfolder survives and the install directory is kept
// as its parent.
func (p *Planner) removeFilesStep(dir string, keepUserData bool) Step {
	return Step{
		ID:          "files:remove",
		Description: "Removing application files",
		Weight:      50,
		Apply: func(_ context.Context) error {
			if !p.fs.Exists(dir) {
				return nil
			}
			if !keepUserData {
				return p.fs.RemoveAll(dir)
			}

			entries, err := p.fs.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("list install directory: %w", err)
			}
			for _, name := range entries {
				if name == platform.UserDataDirName {
					continue
				}
				if err := p.fs.RemoveAll(filepath.Join(dir, name)); err != nil {
					return fmt.Errorf("remove %s: %w", name, err)
				}
			}
			return nil
		},
	}
}

// deleteRecordStep removes the store record. It runs last so a crash before
// it leaves a record pointing at partially cleaned, re-detectable state.
// The environment section is left alone: the PATH list may carry entries
// that are not ours.
func (p *Planner) deleteRecordStep() Step {
	return Step{
		ID:          "store:delete-record",
		Description: "Removing installation record",
		Weight:      20,
		Apply: func(_ context.Context) error {
			for _, section := range []string{
				sysintegration.SectionUninstall,
				sysintegration.SectionComponents,
				sysintegration.SectionInstall,
			} {
				if err := p.integrator.DeleteKey(section); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// payloadFiles lists the file names to place for the desired selection.
func (p *Planner) payloadFiles(desired detect.Components) []string {
	var files []string
	if desired[detect.ComponentGui] && p.man.Executables.Gui != "" {
		files = append(files, p.man.Executables.Gui)
	}
	if desired[detect.ComponentCli] && p.man.Executables.Cli != "" {
		files = append(files, p.man.Executables.Cli)
	}
	files = append(files, p.man.ExtraFiles...)
	return files
}

// shortcutTarget picks the shortcut target executable: GUI when installed,
// CLI otherwise.
func (p *Planner) shortcutTarget(dir string, desired detect.Components) string {
	if desired[detect.ComponentGui] && p.man.Executables.Gui != "" {
		return filepath.Join(dir, p.man.Executables.Gui)
	}
	if desired[detect.ComponentCli] && p.man.Executables.Cli != "" {
		return filepath.Join(dir, p.man.Executables.Cli)
	}
	return ""
}

// toShortcutKind maps a shortcut component onto the integrator's kind.
func toShortcutKind(kind detect.ComponentKind) sysintegration.ShortcutKind {
	if kind == detect.ComponentStartMenuShortcut {
		return sysintegration.ShortcutStartMenu
	}
	return sysintegration.ShortcutDesktop
}
