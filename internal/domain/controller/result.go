package controller

import (
	"time"

	"github.com/metacli/setup/internal/domain/detect"
	"github.com/metacli/setup/internal/domain/plan"
)

// StepStatus is the terminal status of one step within a run.
type StepStatus string

const (
	// StatusSucceeded means the step applied (or was already satisfied).
	StatusSucceeded StepStatus = "succeeded"
	// StatusFailed means the step returned an error.
	StatusFailed StepStatus = "failed"
	// StatusSkipped means the step never ran because an earlier step
	// failed or the run was cancelled.
	StatusSkipped StepStatus = "skipped"
	// StatusRolledBack means the step succeeded and was later undone by
	// the install failure cleanup.
	StatusRolledBack StepStatus = "rolled-back"
)

// StepResult captures the outcome of executing a single step.
type StepResult struct {
	ID          string
	Description string
	Status      StepStatus
	Err         error
	Duration    time.Duration
}

// RunResult is the full outcome of one controller run: terminal state, the
// per-step history, and the final installation record (nil after uninstall
// or when detection found nothing).
type RunResult struct {
	Mode    plan.Mode
	State   State
	Steps   []StepResult
	Record  *detect.Record
	Err     error
	Started time.Time
	Ended   time.Time
}

// Succeeded reports whether the run reached Completed.
func (r *RunResult) Succeeded() bool {
	return r.State == StateCompleted
}

// ExecutedSteps returns the results of steps that actually ran.
func (r *RunResult) ExecutedSteps() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Status != StatusSkipped {
			out = append(out, s)
		}
	}
	return out
}
