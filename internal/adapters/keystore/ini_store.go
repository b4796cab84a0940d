// Package keystore provides the registry-equivalent persistent store.
package keystore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/ini.v1"

	"github.com/metacli/setup/internal/ports"
)

// ErrPermissionDenied indicates the caller lacks privilege for the store's
// scope.
var ErrPermissionDenied = errors.New("permission denied")

// INIStore implements ports.KeyStore backed by a single INI file reserved
// for the application. All reads load the file fresh so concurrent changes
// made by other tooling are observed; writes rewrite the file atomically
// via a temp file rename.
type INIStore struct {
	mu   sync.Mutex
	path string
}

// NewINIStore creates a store backed by the INI file at path. The file does
// not need to exist; it is created on first write.
func NewINIStore(path string) *INIStore {
	return &INIStore{path: path}
}

// Path returns the backing file path.
func (s *INIStore) Path() string {
	return s.path
}

// ReadValue returns the value for name in section.
func (s *INIStore) ReadValue(section, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return "", false, err
	}
	if cfg == nil {
		return "", false, nil
	}

	sec, err := cfg.GetSection(section)
	if err != nil {
		return "", false, nil //nolint:nilerr // absent section means absent value
	}
	if !sec.HasKey(name) {
		return "", false, nil
	}
	return sec.Key(name).String(), true, nil
}

// WriteValue sets name to value in section.
func (s *INIStore) WriteValue(section, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = ini.Empty()
	}

	cfg.Section(section).Key(name).SetValue(value)
	return s.save(cfg)
}

// DeleteValue removes name from section. Absent values are a no-op.
func (s *INIStore) DeleteValue(section, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}

	sec, err := cfg.GetSection(section)
	if err != nil {
		return nil //nolint:nilerr // absent section means nothing to delete
	}
	if !sec.HasKey(name) {
		return nil
	}
	sec.DeleteKey(name)
	return s.save(cfg)
}

// DeleteSection removes a section and all its values. Absent sections are a
// no-op.
func (s *INIStore) DeleteSection(section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}

	if _, err := cfg.GetSection(section); err != nil {
		return nil //nolint:nilerr // already absent
	}
	cfg.DeleteSection(section)
	return s.save(cfg)
}

// HasSection reports whether the section exists.
func (s *INIStore) HasSection(section string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil || cfg == nil {
		return false
	}
	_, err = cfg.GetSection(section)
	return err == nil
}

// load reads the backing file. A missing file yields (nil, nil).
func (s *INIStore) load() (*ini.File, error) {
	cfg, err := ini.Load(s.path)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) && errors.Is(pathErr.Err, fs.ErrNotExist) {
			return nil, nil
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, s.path)
		}
		return nil, fmt.Errorf("load store %s: %w", s.path, err)
	}
	return cfg, nil
}

// save writes the file atomically: serialize to a temp file in the same
// directory, then rename over the target.
func (s *INIStore) save(cfg *ini.File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, dir)
		}
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".store-*.tmp")
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, dir)
		}
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := cfg.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, s.path)
		}
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// Ensure INIStore implements ports.KeyStore.
var _ ports.KeyStore = (*INIStore)(nil)
