package controller

import "github.com/metacli/setup/internal/domain/detect"

// Presenter is the presentation-layer contract the controller drives.
// Progress and log events are fire-and-forget; CancelRequested is polled
// between steps, never mid-step.
type Presenter interface {
	// OnProgress reports cumulative progress in [0,100] with the
	// description of the step that just finished.
	OnProgress(percent int, description string)

	// OnLog emits one human-readable line.
	OnLog(line string)

	// CancelRequested reports whether the user asked to cancel.
	CancelRequested() bool

	// OnComplete delivers the terminal outcome: the final installation
	// record on success, the run error otherwise. Exactly one of the two
	// is non-nil, except after a completed uninstall where both are nil.
	OnComplete(record *detect.Record, err error)
}

// NopPresenter discards all events and never requests cancellation.
type NopPresenter struct{}

func (NopPresenter) OnProgress(int, string)            {}
func (NopPresenter) OnLog(string)                      {}
func (NopPresenter) CancelRequested() bool             { return false }
func (NopPresenter) OnComplete(*detect.Record, error)  {}
