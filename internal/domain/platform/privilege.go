package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/metacli/setup/internal/ports"
)

// protectedRoots returns directory roots that require elevated privilege to
// modify on the given OS.
func protectedRoots(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			programFiles(),
			`C:\Program Files (x86)`,
			`C:\Windows`,
			programData(),
		}
	case "darwin":
		return []string{"/Applications", "/usr", "/opt", "/etc", "/Library"}
	default:
		return []string{"/usr", "/opt", "/etc", "/var"}
	}
}

// RequiresElevation reports whether installing into dir needs elevated
// privilege. A dir under a protected root always does; otherwise a write
// probe on the nearest existing ancestor decides. When the answer cannot be
// determined, elevation is assumed to be required.
func RequiresElevation(dir string) bool {
	return requiresElevation(dir, runtime.GOOS)
}

func requiresElevation(dir, goos string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return true
	}

	for _, root := range protectedRoots(goos) {
		if isUnder(abs, root) {
			return true
		}
	}

	probe := nearestExisting(abs)
	if probe == "" {
		return true
	}
	return !canWrite(probe)
}

// ScopeFor returns the scope matching the privilege the installation into
// dir will run with: system when the target needs elevation, user otherwise.
func ScopeFor(dir string) ports.Scope {
	if RequiresElevation(dir) {
		return ports.ScopeSystem
	}
	return ports.ScopeUser
}

// isUnder reports whether path is root or inside it, case-insensitively on
// the path separator normalized form.
func isUnder(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}

// nearestExisting walks up from dir until it finds an existing directory.
func nearestExisting(dir string) string {
	for d := dir; ; {
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			return d
		}
		parent := filepath.Dir(d)
		if parent == d {
			return ""
		}
		d = parent
	}
}
