package deps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/metacli/setup/internal/ports"
)

// ErrInstallFailed wraps a dependency whose provisioning failed after the
// retry. Provisioning failure aborts the whole operation.
var ErrInstallFailed = errors.New("dependency install failed")

// DefaultInstallTimeout bounds a single provisioning attempt.
const DefaultInstallTimeout = 5 * time.Minute

// defaultCheckTimeout bounds a single status query.
const defaultCheckTimeout = 15 * time.Second

// Manager checks and provisions runtime packages through an external package
// tool. The tool contract follows the usual package-manager shape:
//
//	<tool> show <name>        exit 0 and a "Version: x.y.z" line when installed
//	<tool> install <name>     provision the package
//	<tool> install --upgrade <name>
type Manager struct {
	tool           string
	runner         ports.CommandRunner
	logger         ports.Logger
	installTimeout time.Duration
}

// NewManager creates a Manager using the given package tool.
func NewManager(tool string, runner ports.CommandRunner, logger ports.Logger) *Manager {
	return &Manager{
		tool:           tool,
		runner:         runner,
		logger:         logger,
		installTimeout: DefaultInstallTimeout,
	}
}

// WithInstallTimeout returns a Manager with a custom per-attempt timeout.
func (m *Manager) WithInstallTimeout(d time.Duration) *Manager {
	return &Manager{
		tool:           m.tool,
		runner:         m.runner,
		logger:         m.logger,
		installTimeout: d,
	}
}

// Check queries the status of every spec. It is a pure query and never
// mutates the machine.
func (m *Manager) Check(ctx context.Context, specs []Spec) (map[string]Status, error) {
	statuses := make(map[string]Status, len(specs))
	for _, spec := range specs {
		status, err := m.checkOne(ctx, spec)
		if err != nil {
			return nil, err
		}
		statuses[spec.Name] = status
	}
	return statuses, nil
}

// Install provisions every spec whose status is not satisfied. A failed
// attempt is retried once before the spec's failure aborts the run.
func (m *Manager) Install(ctx context.Context, specs []Spec) error {
	statuses, err := m.Check(ctx, specs)
	if err != nil {
		return err
	}

	for _, spec := range specs {
		status := statuses[spec.Name]
		if !status.NeedsInstall() {
			m.logger.Debug(ctx, "dependency satisfied", ports.F("name", spec.Name))
			continue
		}

		upgrade := status == StatusVersionMismatch
		if err := m.installOne(ctx, spec, upgrade); err != nil {
			m.logger.Warn(ctx, "dependency install failed, retrying",
				ports.F("name", spec.Name), ports.F("error", err.Error()))
			if err := m.installOne(ctx, spec, upgrade); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInstallFailed, spec.Name, err)
			}
		}
		m.logger.Info(ctx, "dependency installed", ports.F("name", spec.Name))
	}
	return nil
}

// checkOne resolves the status of a single spec.
func (m *Manager) checkOne(ctx context.Context, spec Spec) (Status, error) {
	checkCtx, cancel := context.WithTimeout(ctx, defaultCheckTimeout)
	defer cancel()

	result, err := m.runner.Run(checkCtx, m.tool, "show", spec.Name)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", spec.Name, err)
	}
	if !result.Success() {
		return StatusMissing, nil
	}

	installed := parseVersion(result.Stdout)
	if installed == "" {
		// Installed but version unknown; treat as needing an upgrade so the
		// provisioning pass brings it to a known state.
		return StatusVersionMismatch, nil
	}

	if spec.MinVersion == "" || atLeast(installed, spec.MinVersion) {
		return StatusSatisfied, nil
	}
	return StatusVersionMismatch, nil
}

// installOne runs a single provisioning attempt with a bounded timeout.
func (m *Manager) installOne(ctx context.Context, spec Spec, upgrade bool) error {
	installCtx, cancel := context.WithTimeout(ctx, m.installTimeout)
	defer cancel()

	args := []string{"install"}
	if upgrade {
		args = append(args, "--upgrade")
	}
	args = append(args, spec.Name)

	result, err := m.runner.Run(installCtx, m.tool, args...)
	if err != nil {
		if errors.Is(installCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("install %s timed out after %s", spec.Name, m.installTimeout)
		}
		return err
	}
	if !result.Success() {
		return fmt.Errorf("%s install %s: %s", m.tool, spec.Name, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// parseVersion extracts the version from "Version: x.y.z" tool output.
func parseVersion(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "Version:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// atLeast reports whether installed >= min. Versions are compared as semver
// when both are valid; otherwise a plain string comparison is the fallback.
func atLeast(installed, min string) bool {
	iv := canonical(installed)
	mv := canonical(min)
	if semver.IsValid(iv) && semver.IsValid(mv) {
		return semver.Compare(iv, mv) >= 0
	}
	return installed >= min
}

// canonical normalizes a bare version to the "v"-prefixed form semver wants.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
