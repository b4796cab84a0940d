// Package detect derives the ground-truth installation record from the
// machine. Registry alone is untrustworthy (stale after manual file
// deletion) and the filesystem alone is untrustworthy (misses registry-only
// remnants), so the detector corroborates both.
package detect

import (
	"time"
)

// ComponentKind identifies one independently installable piece of the
// product.
type ComponentKind string

const (
	// ComponentGui is the GUI executable.
	ComponentGui ComponentKind = "gui"
	// ComponentCli is the CLI executable.
	ComponentCli ComponentKind = "cli"
	// ComponentDesktopShortcut is the desktop shortcut artifact.
	ComponentDesktopShortcut ComponentKind = "desktop-shortcut"
	// ComponentStartMenuShortcut is the start-menu shortcut artifact.
	ComponentStartMenuShortcut ComponentKind = "start-menu-shortcut"
	// ComponentPathEntry is the install directory's PATH entry.
	ComponentPathEntry ComponentKind = "path-entry"
)

// String returns the string representation of the kind.
func (k ComponentKind) String() string {
	return string(k)
}

// StoreName returns the value name used for the kind in the components
// section of the store.
func (k ComponentKind) StoreName() string {
	switch k {
	case ComponentGui:
		return "Gui"
	case ComponentCli:
		return "Cli"
	case ComponentDesktopShortcut:
		return "DesktopShortcuts"
	case ComponentStartMenuShortcut:
		return "StartMenuShortcuts"
	case ComponentPathEntry:
		return "PathEntry"
	default:
		return string(k)
	}
}

// IsExecutable reports whether the kind is a file-backed executable.
func (k ComponentKind) IsExecutable() bool {
	return k == ComponentGui || k == ComponentCli
}

// AllComponents returns every component kind in a stable order.
func AllComponents() []ComponentKind {
	return []ComponentKind{
		ComponentGui,
		ComponentCli,
		ComponentDesktopShortcut,
		ComponentStartMenuShortcut,
		ComponentPathEntry,
	}
}

// Components maps each kind to whether it is present/selected.
type Components map[ComponentKind]bool

// NewComponents creates a set with the given kinds enabled.
func NewComponents(kinds ...ComponentKind) Components {
	c := make(Components, len(kinds))
	for _, k := range kinds {
		c[k] = true
	}
	return c
}

// Clone returns a copy of the set.
func (c Components) Clone() Components {
	out := make(Components, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Any reports whether any component is enabled.
func (c Components) Any() bool {
	for _, v := range c {
		if v {
			return true
		}
	}
	return false
}

// HasExecutable reports whether at least one executable component is enabled.
func (c Components) HasExecutable() bool {
	return c[ComponentGui] || c[ComponentCli]
}

// normalize clears integration components when both executables are absent:
// a PATH entry or shortcut is meaningless without an executable.
func (c Components) normalize() Components {
	if c.HasExecutable() {
		return c
	}
	out := c.Clone()
	out[ComponentDesktopShortcut] = false
	out[ComponentStartMenuShortcut] = false
	out[ComponentPathEntry] = false
	return out
}

// Record is a point-in-time snapshot of what is actually installed, always
// derived fresh from the machine and never cached across runs.
type Record struct {
	InstallPath string
	Version     string
	InstallDate time.Time

	// Components holds what is verifiably present right now.
	Components Components

	// Claimed holds what the store says was installed. Repair uses this
	// as the desired state.
	Claimed Components
}

// Broken reports whether the record is an orphaned remnant: a store entry
// with no verifiable component at all.
func (r *Record) Broken() bool {
	return !r.Components.Any()
}

// Healthy reports whether every claimed component is verifiably present.
func (r *Record) Healthy() bool {
	for k, claimed := range r.Claimed {
		if claimed && !r.Components[k] {
			return false
		}
	}
	return r.Components.Any()
}

// MissingComponents returns the claimed components that are not verifiable,
// in stable order.
func (r *Record) MissingComponents() []ComponentKind {
	var missing []ComponentKind
	for _, k := range AllComponents() {
		if r.Claimed[k] && !r.Components[k] {
			missing = append(missing, k)
		}
	}
	return missing
}
