// Package report persists the outcome of a lifecycle run for later
// inspection and support bundles.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/metacli/setup/internal/domain/controller"
	"github.com/metacli/setup/internal/domain/detect"
)

// StepEntry is one executed (or skipped) step in the run history.
type StepEntry struct {
	ID          string        `yaml:"id"`
	Description string        `yaml:"description"`
	Status      string        `yaml:"status"`
	Error       string        `yaml:"error,omitempty"`
	Duration    time.Duration `yaml:"duration,omitempty"`
}

// RecordSummary is the final installation record in persisted form.
type RecordSummary struct {
	InstallPath string          `yaml:"install_path"`
	Version     string          `yaml:"version"`
	Components  map[string]bool `yaml:"components"`
}

// RunReport is the persisted outcome of one run.
type RunReport struct {
	ID         string         `yaml:"id"`
	Mode       string         `yaml:"mode"`
	State      string         `yaml:"state"`
	StartedAt  time.Time      `yaml:"started_at"`
	FinishedAt time.Time      `yaml:"finished_at"`
	Steps      []StepEntry    `yaml:"steps"`
	Error      string         `yaml:"error,omitempty"`
	Record     *RecordSummary `yaml:"record,omitempty"`
}

// FromResult builds a report with a generated ID from a run outcome.
func FromResult(res *controller.RunResult) *RunReport {
	r := &RunReport{
		ID:         uuid.New().String(),
		Mode:       string(res.Mode),
		State:      string(res.State),
		StartedAt:  res.Started,
		FinishedAt: res.Ended,
	}
	for _, s := range res.Steps {
		entry := StepEntry{
			ID:          s.ID,
			Description: s.Description,
			Status:      string(s.Status),
			Duration:    s.Duration,
		}
		if s.Err != nil {
			entry.Error = s.Err.Error()
		}
		r.Steps = append(r.Steps, entry)
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	if res.Record != nil {
		r.Record = summarize(res.Record)
	}
	return r
}

func summarize(record *detect.Record) *RecordSummary {
	components := make(map[string]bool, len(record.Components))
	for _, kind := range detect.AllComponents() {
		components[kind.String()] = record.Components[kind]
	}
	return &RecordSummary{
		InstallPath: record.InstallPath,
		Version:     record.Version,
		Components:  components,
	}
}

// Writer persists run reports as YAML files in a single directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write saves the report and returns the file path. Writes are atomic via a
// temp file rename.
func (w *Writer) Write(r *RunReport) (string, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("run-%s.yaml", r.ID))
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
