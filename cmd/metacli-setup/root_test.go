package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/metacli/setup/internal/domain/controller"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "privilege",
			err:  &controller.RunError{Code: controller.ErrCodePrivilege, Underlying: controller.ErrInsufficientPrivilege},
			want: exitPrivilege,
		},
		{
			name: "cancelled",
			err:  &controller.RunError{Code: controller.ErrCodeCancelled, Underlying: controller.ErrCancelled},
			want: exitCancelled,
		},
		{
			name: "step failure",
			err:  &controller.RunError{Code: controller.ErrCodeStepFailed, Underlying: errors.New("disk full")},
			want: exitFailed,
		},
		{
			name: "plain error",
			err:  errors.New("load manifest: no such file"),
			want: exitFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
		})
	}
}

func TestFormatError_RunError(t *testing.T) {
	verbose = false
	defer func() { verbose = false }()

	err := &controller.RunError{
		Code:       controller.ErrCodeStepFailed,
		Message:    "Copying application files failed",
		StepID:     "files:copy",
		Suggestion: "Check free disk space and retry.",
		Underlying: errors.New("disk full"),
	}

	got := formatError(err)
	assert.Contains(t, got, "Copying application files failed")
	assert.Contains(t, got, "Suggestion: Check free disk space and retry.")
	assert.NotContains(t, got, "disk full", "technical cause is verbose-only")
}

func TestFormatError_Verbose(t *testing.T) {
	verbose = true
	defer func() { verbose = false }()

	err := &controller.RunError{
		Code:       controller.ErrCodeStepFailed,
		Message:    "Copying application files failed",
		StepID:     "files:copy",
		Underlying: errors.New("disk full"),
	}

	got := formatError(err)
	assert.Contains(t, got, controller.ErrCodeStepFailed)
	assert.Contains(t, got, "disk full")
}

func TestFormatError_PlainError(t *testing.T) {
	verbose = false
	assert.Equal(t, "load manifest: no such file", formatError(errors.New("load manifest: no such file")))
}

func TestPrintErrorTo(t *testing.T) {
	verbose = false
	var buf bytes.Buffer
	printErrorTo(&buf, errors.New("something broke"))
	assert.Equal(t, "Error: something broke\n", buf.String())
}
