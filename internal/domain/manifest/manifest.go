// Package manifest loads the product manifest shipped next to the setup
// binary. The manifest declares what gets installed: executables, extra
// payload files, and the runtime dependencies the product needs.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/metacli/setup/internal/domain/deps"
)

// DefaultFileName is the manifest file looked up next to the setup binary.
const DefaultFileName = "metacli-setup.toml"

// Manifest describes the product being installed.
type Manifest struct {
	Name      string `toml:"name"`
	Version   string `toml:"version"`
	Publisher string `toml:"publisher"`

	// PayloadDir is the directory, relative to the manifest, holding the
	// files to install.
	PayloadDir string `toml:"payload_dir"`

	Executables Executables `toml:"executables"`

	// ExtraFiles are additional payload files copied verbatim (licenses,
	// readmes).
	ExtraFiles []string `toml:"extra_files"`

	DependencyTool string       `toml:"dependency_tool"`
	Dependencies   []Dependency `toml:"dependencies"`
}

// Executables names the product binaries inside the payload directory.
type Executables struct {
	Gui string `toml:"gui"`
	Cli string `toml:"cli"`
}

// Dependency declares one runtime package requirement.
type Dependency struct {
	Name       string `toml:"name"`
	MinVersion string `toml:"min_version"`
}

// Load reads and validates a manifest from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	if m.PayloadDir != "" && !filepath.IsAbs(m.PayloadDir) {
		m.PayloadDir = filepath.Join(filepath.Dir(path), m.PayloadDir)
	}
	return &m, nil
}

// Validate checks the manifest for the fields the engine cannot run without.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return errors.New("manifest: name is required")
	}
	if m.Version == "" {
		return errors.New("manifest: version is required")
	}
	if m.Executables.Gui == "" && m.Executables.Cli == "" {
		return errors.New("manifest: at least one executable is required")
	}
	for _, d := range m.Dependencies {
		if d.Name == "" {
			return errors.New("manifest: dependency with empty name")
		}
	}
	return nil
}

// DependencySpecs converts the declared dependencies into specs for the
// dependency manager.
func (m *Manifest) DependencySpecs() []deps.Spec {
	specs := make([]deps.Spec, 0, len(m.Dependencies))
	for _, d := range m.Dependencies {
		specs = append(specs, deps.Spec{Name: d.Name, MinVersion: d.MinVersion})
	}
	return specs
}
