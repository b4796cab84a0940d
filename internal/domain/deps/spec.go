// Package deps verifies and provisions the runtime packages the application
// needs before any files are placed.
package deps

// Spec names one required runtime package and the minimum acceptable version.
type Spec struct {
	Name       string
	MinVersion string
}

// Status describes how an installed package relates to its spec.
type Status string

const (
	// StatusSatisfied means the package is present at an acceptable version.
	StatusSatisfied Status = "satisfied"
	// StatusMissing means the package is not installed at all.
	StatusMissing Status = "missing"
	// StatusVersionMismatch means the package is present but older than the
	// spec's floor.
	StatusVersionMismatch Status = "version-mismatch"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// NeedsInstall reports whether the status requires a provisioning attempt.
func (s Status) NeedsInstall() bool {
	return s != StatusSatisfied
}
