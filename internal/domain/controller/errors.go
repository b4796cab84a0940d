// Package controller dispatches the four lifecycle modes and runs plans to
// completion or well-defined partial failure.
package controller

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors surfaced by a run.
var (
	// ErrInsufficientPrivilege means the install path needs elevation the
	// current process does not hold. Raised before any state is read.
	ErrInsufficientPrivilege = errors.New("insufficient privilege for install path")

	// ErrStepTimeout means a step exceeded the per-step deadline.
	ErrStepTimeout = errors.New("step timed out")

	// ErrCancelled means cancellation was honored between steps.
	ErrCancelled = errors.New("operation cancelled")
)

// Error codes for run failures.
const (
	ErrCodePrivilege  = "INSUFFICIENT_PRIVILEGE"
	ErrCodeDetection  = "DETECTION_FAILED"
	ErrCodePlanning   = "PLANNING_FAILED"
	ErrCodeStepFailed = "STEP_FAILED"
	ErrCodeTimeout    = "STEP_TIMEOUT"
	ErrCodeCancelled  = "CANCELLED"
)

// RunError is a run failure with enough context for the caller to act on:
// which phase or step broke, and what to try next.
type RunError struct {
	Code       string
	Message    string
	StepID     string
	Suggestion string
	Underlying error
}

// Error returns the formatted error message.
func (e *RunError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("step %q: %s", e.StepID, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain support.
func (e *RunError) Unwrap() error {
	return e.Underlying
}

// Format returns a fully formatted error with all details.
func (e *RunError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.StepID != "" {
		fmt.Fprintf(&b, "\n  Step: %s", e.StepID)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Underlying.Error())
	}
	return b.String()
}

func newPrivilegeError(dir string) *RunError {
	return &RunError{
		Code:       ErrCodePrivilege,
		Message:    fmt.Sprintf("installing to %s requires elevated privileges", dir),
		Suggestion: "Re-run the setup with administrator rights, or choose a per-user install directory.",
		Underlying: ErrInsufficientPrivilege,
	}
}

func newDetectionError(err error) *RunError {
	return &RunError{
		Code:       ErrCodeDetection,
		Message:    "could not determine the current installation state",
		Suggestion: "The installation record is damaged. Run uninstall to clear it, then install again.",
		Underlying: err,
	}
}

func newPlanningError(err error) *RunError {
	return &RunError{
		Code:       ErrCodePlanning,
		Message:    "the requested operation is not applicable",
		Underlying: err,
	}
}

func newStepError(stepID, description string, err error) *RunError {
	code := ErrCodeStepFailed
	suggestion := "Run repair to finish or revert the partial changes."
	if errors.Is(err, ErrStepTimeout) {
		code = ErrCodeTimeout
		suggestion = "The step did not finish in time. Check network and disk health, then retry."
	}
	return &RunError{
		Code:       code,
		Message:    fmt.Sprintf("%s failed", description),
		StepID:     stepID,
		Suggestion: suggestion,
		Underlying: err,
	}
}

func newCancelledError() *RunError {
	return &RunError{
		Code:       ErrCodeCancelled,
		Message:    "operation cancelled before completion",
		Suggestion: "Already executed steps remain applied. Run repair or uninstall to reach a clean state.",
		Underlying: ErrCancelled,
	}
}
