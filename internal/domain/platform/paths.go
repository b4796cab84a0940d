// Package platform resolves the well-known machine locations the engine
// touches and answers privilege questions for a given installation scope.
package platform

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/metacli/setup/internal/ports"
)

// UserDataDirName is the reserved subfolder inside the install directory
// treated as user data. It is preserved across uninstall when requested.
const UserDataDirName = "userdata"

// AppDirName is the directory name used for all application-owned locations.
const AppDirName = "metacli"

// Paths resolves filesystem locations for one installation scope.
type Paths struct {
	scope   ports.Scope
	homeDir string
	goos    string
}

// NewPaths creates a resolver for the given scope on the current platform.
func NewPaths(scope ports.Scope) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{scope: scope, homeDir: home, goos: runtime.GOOS}, nil
}

// NewPathsWithRoot creates a resolver with explicit home and GOOS (for testing).
func NewPathsWithRoot(scope ports.Scope, home, goos string) *Paths {
	return &Paths{scope: scope, homeDir: home, goos: goos}
}

// Scope returns the scope this resolver targets.
func (p *Paths) Scope() ports.Scope {
	return p.scope
}

// DefaultInstallDir returns the conventional install directory for the scope.
func (p *Paths) DefaultInstallDir() string {
	if p.scope == ports.ScopeSystem {
		switch p.goos {
		case "windows":
			return filepath.Join(programFiles(), "MetaCLI")
		case "darwin":
			return filepath.Join("/Applications", "MetaCLI")
		default:
			return filepath.Join("/opt", AppDirName)
		}
	}

	switch p.goos {
	case "windows":
		return filepath.Join(p.homeDir, "AppData", "Local", "Programs", "MetaCLI")
	default:
		return filepath.Join(p.homeDir, ".local", "opt", AppDirName)
	}
}

// StoreFile returns the path of the registry-equivalent store for the scope.
func (p *Paths) StoreFile() string {
	if p.scope == ports.ScopeSystem {
		switch p.goos {
		case "windows":
			return filepath.Join(programData(), "MetaCLI", "registry.ini")
		default:
			return filepath.Join("/etc", AppDirName, "registry.ini")
		}
	}

	switch p.goos {
	case "windows":
		return filepath.Join(p.homeDir, "AppData", "Roaming", "MetaCLI", "registry.ini")
	default:
		return filepath.Join(p.configHome(), AppDirName, "registry.ini")
	}
}

// DesktopShortcutDir returns the directory desktop shortcuts are written to.
// Desktop shortcuts are always per-user artifacts.
func (p *Paths) DesktopShortcutDir() string {
	if dir := os.Getenv("XDG_DESKTOP_DIR"); dir != "" && p.goos == "linux" {
		return dir
	}
	return filepath.Join(p.homeDir, "Desktop")
}

// StartMenuShortcutDir returns the launcher/start-menu directory for the scope.
func (p *Paths) StartMenuShortcutDir() string {
	if p.scope == ports.ScopeSystem {
		switch p.goos {
		case "windows":
			return filepath.Join(programData(), "Microsoft", "Windows", "Start Menu", "Programs", "MetaCLI")
		case "darwin":
			return filepath.Join("/Applications", "MetaCLI")
		default:
			return filepath.Join("/usr", "share", "applications")
		}
	}

	switch p.goos {
	case "windows":
		return filepath.Join(p.homeDir, "AppData", "Roaming", "Microsoft", "Windows", "Start Menu", "Programs", "MetaCLI")
	default:
		return filepath.Join(p.dataHome(), "applications")
	}
}

// configHome returns $XDG_CONFIG_HOME or ~/.config.
func (p *Paths) configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(p.homeDir, ".config")
}

// dataHome returns $XDG_DATA_HOME or ~/.local/share.
func (p *Paths) dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(p.homeDir, ".local", "share")
}

func programFiles() string {
	if dir := os.Getenv("ProgramFiles"); dir != "" {
		return dir
	}
	return `C:\Program Files`
}

func programData() string {
	if dir := os.Getenv("ProgramData"); dir != "" {
		return dir
	}
	return `C:\ProgramData`
}
