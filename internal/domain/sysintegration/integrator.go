// Package sysintegration provides the primitive operations against
// OS-level installation state: the registry-equivalent key store, the PATH
// list, and shortcut artifacts. It has no knowledge of operation modes.
//
// Every side effect is scoped to the single namespace reserved for the
// application (its own store file, its own shortcut files, PATH entries
// equal to its own install directory). Unrelated state is never touched.
package sysintegration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/metacli/setup/internal/domain/platform"
	"github.com/metacli/setup/internal/ports"
)

// Store sections of the application namespace.
const (
	SectionInstall     = "install"
	SectionComponents  = "components"
	SectionUninstall   = "uninstall"
	SectionEnvironment = "environment"
)

// Value names inside the store sections.
const (
	KeyInstallPath = "InstallPath"
	KeyVersion     = "Version"
	KeyInstallDate = "InstallDate"

	KeyPath = "Path"

	KeyDisplayName      = "DisplayName"
	KeyDisplayVersion   = "DisplayVersion"
	KeyPublisher        = "Publisher"
	KeyUninstallCommand = "UninstallCommand"
)

// ErrInvalidValue indicates a value that does not fit the key's expected type.
var ErrInvalidValue = errors.New("invalid value")

// ShortcutKind selects the logical location of a shortcut artifact.
type ShortcutKind string

const (
	// ShortcutDesktop is the per-user desktop shortcut.
	ShortcutDesktop ShortcutKind = "desktop"
	// ShortcutStartMenu is the launcher/start-menu shortcut.
	ShortcutStartMenu ShortcutKind = "start-menu"
)

// String returns the string representation of the kind.
func (k ShortcutKind) String() string {
	return string(k)
}

// Integrator implements the system-integration primitives. All operations
// are idempotent: repeating one that already achieved its effect succeeds
// without duplicating state.
type Integrator struct {
	store ports.KeyStore
	fs    ports.FileSystem
	paths *platform.Paths
}

// New creates an Integrator over the given store and filesystem, scoped by
// the platform path resolver.
func New(store ports.KeyStore, fs ports.FileSystem, paths *platform.Paths) *Integrator {
	return &Integrator{store: store, fs: fs, paths: paths}
}

// WriteValue sets a string value in the application namespace.
func (i *Integrator) WriteValue(section, name, value string) error {
	return i.store.WriteValue(section, name, value)
}

// ReadValue reads a string value. Absence is reported, not an error.
func (i *Integrator) ReadValue(section, name string) (string, bool, error) {
	return i.store.ReadValue(section, name)
}

// WriteBool sets a boolean value, stored as "true"/"false".
func (i *Integrator) WriteBool(section, name string, v bool) error {
	return i.store.WriteValue(section, name, fmt.Sprintf("%t", v))
}

// ReadBool reads a boolean value. A malformed stored value yields
// ErrInvalidValue.
func (i *Integrator) ReadBool(section, name string) (bool, bool, error) {
	raw, ok, err := i.store.ReadValue(section, name)
	if err != nil || !ok {
		return false, ok, err
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		return true, true, nil
	case "false", "0":
		return false, true, nil
	default:
		return false, true, fmt.Errorf("%w: %s.%s=%q", ErrInvalidValue, section, name, raw)
	}
}

// DeleteKey removes an entire section. Deleting an absent section is a
// successful no-op.
func (i *Integrator) DeleteKey(section string) error {
	return i.store.DeleteSection(section)
}

// HasRecord reports whether the install section exists at all.
func (i *Integrator) HasRecord() bool {
	return i.store.HasSection(SectionInstall)
}

// AddToPath adds dir to the scope's PATH list. If dir is already present
// (after normalization, compared case-insensitively) the call succeeds
// without modification.
func (i *Integrator) AddToPath(dir string) error {
	entries, err := i.pathEntries()
	if err != nil {
		return err
	}

	normalized := normalizePathEntry(dir)
	for _, e := range entries {
		if pathEntryEqual(e, normalized) {
			return nil
		}
	}

	entries = append(entries, normalized)
	return i.store.WriteValue(SectionEnvironment, KeyPath, joinPathList(entries))
}

// RemoveFromPath removes every occurrence of dir from the PATH list. An
// absent entry is a successful no-op.
func (i *Integrator) RemoveFromPath(dir string) error {
	entries, err := i.pathEntries()
	if err != nil {
		return err
	}

	normalized := normalizePathEntry(dir)
	kept := entries[:0]
	removed := false
	for _, e := range entries {
		if pathEntryEqual(e, normalized) {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return nil
	}

	if len(kept) == 0 {
		return i.store.DeleteValue(SectionEnvironment, KeyPath)
	}
	return i.store.WriteValue(SectionEnvironment, KeyPath, joinPathList(kept))
}

// IsInPath reports whether dir is present in the PATH list.
func (i *Integrator) IsInPath(dir string) (bool, error) {
	entries, err := i.pathEntries()
	if err != nil {
		return false, err
	}
	normalized := normalizePathEntry(dir)
	for _, e := range entries {
		if pathEntryEqual(e, normalized) {
			return true, nil
		}
	}
	return false, nil
}

// CreateShortcut writes the shortcut artifact for kind pointing at target
// with installDir as working directory. An existing shortcut at the same
// location is overwritten, never duplicated.
func (i *Integrator) CreateShortcut(kind ShortcutKind, target, installDir string) error {
	path := i.ShortcutPath(kind)
	if err := i.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create shortcut directory: %w", err)
	}

	content := shortcutContent(target, installDir)
	if err := i.fs.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write shortcut %s: %w", path, err)
	}
	return nil
}

// RemoveShortcut deletes the shortcut artifact for kind. An absent shortcut
// is a successful no-op.
func (i *Integrator) RemoveShortcut(kind ShortcutKind) error {
	path := i.ShortcutPath(kind)
	if !i.fs.Exists(path) {
		return nil
	}
	if err := i.fs.Remove(path); err != nil {
		return fmt.Errorf("remove shortcut %s: %w", path, err)
	}
	return nil
}

// ShortcutExists reports whether the artifact for kind is on disk.
func (i *Integrator) ShortcutExists(kind ShortcutKind) bool {
	return i.fs.Exists(i.ShortcutPath(kind))
}

// ShortcutPath returns the deterministic artifact location for kind.
func (i *Integrator) ShortcutPath(kind ShortcutKind) string {
	switch kind {
	case ShortcutStartMenu:
		return filepath.Join(i.paths.StartMenuShortcutDir(), "MetaCLI.desktop")
	default:
		return filepath.Join(i.paths.DesktopShortcutDir(), "MetaCLI.desktop")
	}
}

// pathEntries returns the current PATH list, split and trimmed.
func (i *Integrator) pathEntries() ([]string, error) {
	raw, ok, err := i.store.ReadValue(SectionEnvironment, KeyPath)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, string(os.PathListSeparator))
	entries := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			entries = append(entries, p)
		}
	}
	return entries, nil
}

// shortcutContent renders the shortcut artifact body.
func shortcutContent(target, installDir string) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=MetaCLI\n")
	b.WriteString("Exec=" + target + "\n")
	b.WriteString("Path=" + installDir + "\n")
	return b.String()
}

func joinPathList(entries []string) string {
	return strings.Join(entries, string(os.PathListSeparator))
}

func normalizePathEntry(dir string) string {
	return filepath.Clean(strings.TrimSpace(dir))
}

// pathEntryEqual compares normalized entries case-insensitively, matching
// the registry PATH semantics the store models.
func pathEntryEqual(a, b string) bool {
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}
