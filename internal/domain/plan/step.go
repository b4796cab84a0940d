// Package plan turns a mode and the current installation record into an
// ordered list of idempotent steps. Planning never mutates the machine;
// only controller execution does.
package plan

import (
	"context"
)

// Step is one idempotent unit of system mutation with a progress weight.
// Re-running a step that already achieved its effect succeeds as a no-op.
type Step struct {
	// ID is a stable identifier, e.g. "deps:install" or "path:add".
	ID string

	// Description is the human-readable progress line for the step.
	Description string

	// Weight is the step's relative share of plan progress.
	Weight int

	// Apply executes the step's effect.
	Apply func(ctx context.Context) error

	// Undo best-effort reverses the step's effect. Only set for steps
	// that participate in install rollback; nil means nothing to undo.
	Undo func(ctx context.Context) error
}

// Mode selects which of the four operation state machines runs. Exactly one
// mode is active per run, chosen before any state is read.
type Mode string

const (
	// ModeInstall performs a fresh installation.
	ModeInstall Mode = "install"
	// ModeRepair restores the components a record claims were installed.
	ModeRepair Mode = "repair"
	// ModeModify reconciles integration components with a new selection.
	ModeModify Mode = "modify"
	// ModeUninstall removes the installation.
	ModeUninstall Mode = "uninstall"
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is one of the four modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeInstall, ModeRepair, ModeModify, ModeUninstall:
		return true
	}
	return false
}
