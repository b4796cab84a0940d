package plan

import "errors"

// Planning errors. All are reported before any mutation begins.
var (
	// ErrAlreadyInstalled is returned when Install finds a healthy or
	// partially healthy installation. Callers should redirect to Repair
	// or Modify.
	ErrAlreadyInstalled = errors.New("already installed")

	// ErrNothingToRepair is returned when Repair finds no record.
	ErrNothingToRepair = errors.New("nothing to repair")

	// ErrNothingToModify is returned when Modify finds no record, or a
	// record too broken to modify.
	ErrNothingToModify = errors.New("nothing to modify")

	// ErrNothingToUninstall is returned when Uninstall finds no record.
	ErrNothingToUninstall = errors.New("nothing to uninstall")
)
