package detect

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/metacli/setup/internal/domain/sysintegration"
	"github.com/metacli/setup/internal/ports"
)

// ErrInconsistent indicates registry and filesystem state disagree in a way
// no policy resolves, such as a store record without an install path.
var ErrInconsistent = errors.New("installation state inconsistent")

// Detector produces the current Record by combining store lookup with
// filesystem verification.
type Detector struct {
	integrator *sysintegration.Integrator
	fs         ports.FileSystem
	guiExe     string
	cliExe     string
	logger     ports.Logger
}

// New creates a Detector. guiExe and cliExe are the executable file names
// expected inside the install directory; either may be empty when the
// product does not ship that executable.
func New(integrator *sysintegration.Integrator, fs ports.FileSystem, guiExe, cliExe string, logger ports.Logger) *Detector {
	return &Detector{
		integrator: integrator,
		fs:         fs,
		guiExe:     guiExe,
		cliExe:     cliExe,
		logger:     logger,
	}
}

// Detect returns the current installation record, or nil when nothing is
// installed. The record is always computed fresh; a store entry whose
// components are all gone is still returned so callers can see the orphan.
func (d *Detector) Detect(ctx context.Context) (*Record, error) {
	if !d.integrator.HasRecord() {
		d.logger.Debug(ctx, "no installation record")
		return nil, nil
	}

	installPath, ok, err := d.integrator.ReadValue(sysintegration.SectionInstall, sysintegration.KeyInstallPath)
	if err != nil {
		return nil, fmt.Errorf("read install path: %w", err)
	}
	if !ok || installPath == "" {
		return nil, fmt.Errorf("%w: record exists without an install path", ErrInconsistent)
	}

	version, _, err := d.integrator.ReadValue(sysintegration.SectionInstall, sysintegration.KeyVersion)
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version == "" {
		return nil, fmt.Errorf("%w: record exists without a version", ErrInconsistent)
	}

	record := &Record{
		InstallPath: installPath,
		Version:     version,
		InstallDate: d.readInstallDate(ctx),
		Claimed:     d.readClaims(ctx),
	}
	record.Components = d.verify(ctx, record).normalize()

	d.logger.Debug(ctx, "installation detected",
		ports.F("path", record.InstallPath),
		ports.F("version", record.Version),
		ports.F("healthy", record.Healthy()))
	return record, nil
}

// readInstallDate parses the stored ISO-8601 install date. A malformed date
// is tolerated as unknown rather than failing detection.
func (d *Detector) readInstallDate(ctx context.Context) time.Time {
	raw, ok, err := d.integrator.ReadValue(sysintegration.SectionInstall, sysintegration.KeyInstallDate)
	if err != nil || !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		d.logger.Warn(ctx, "unparseable install date in store", ports.F("value", raw))
		return time.Time{}
	}
	return t
}

// readClaims reads the component booleans the store asserts. Absent or
// malformed values count as not claimed.
func (d *Detector) readClaims(ctx context.Context) Components {
	claims := make(Components, len(AllComponents()))
	for _, kind := range AllComponents() {
		v, ok, err := d.integrator.ReadBool(sysintegration.SectionComponents, kind.StoreName())
		if err != nil {
			d.logger.Warn(ctx, "malformed component claim", ports.F("component", kind.String()))
			continue
		}
		claims[kind] = ok && v
	}
	return claims
}

// verify computes what is actually present: file-backed components need both
// the claim and the file, integration components are direct queries.
func (d *Detector) verify(ctx context.Context, record *Record) Components {
	present := make(Components, len(AllComponents()))

	if d.guiExe != "" {
		present[ComponentGui] = record.Claimed[ComponentGui] &&
			d.fs.Exists(filepath.Join(record.InstallPath, d.guiExe))
	}
	if d.cliExe != "" {
		present[ComponentCli] = record.Claimed[ComponentCli] &&
			d.fs.Exists(filepath.Join(record.InstallPath, d.cliExe))
	}

	present[ComponentDesktopShortcut] = d.integrator.ShortcutExists(sysintegration.ShortcutDesktop)
	present[ComponentStartMenuShortcut] = d.integrator.ShortcutExists(sysintegration.ShortcutStartMenu)

	inPath, err := d.integrator.IsInPath(record.InstallPath)
	if err != nil {
		d.logger.Warn(ctx, "PATH query failed during detection", ports.F("error", err.Error()))
		inPath = false
	}
	present[ComponentPathEntry] = inPath

	return present
}
