package mocks

import (
	"sync"

	"github.com/metacli/setup/internal/ports"
)

// KeyStore is a thread-safe in-memory test double for ports.KeyStore.
type KeyStore struct {
	mu       sync.RWMutex
	sections map[string]map[string]string

	writeErr error
}

// NewKeyStore creates a new KeyStore mock.
func NewKeyStore() *KeyStore {
	return &KeyStore{
		sections: make(map[string]map[string]string),
	}
}

// FailWrites makes every WriteValue call fail with err.
func (m *KeyStore) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// ReadValue returns the value for name in section.
func (m *KeyStore) ReadValue(section, name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values, ok := m.sections[section]
	if !ok {
		return "", false, nil
	}
	value, ok := values[name]
	return value, ok, nil
}

// WriteValue sets name to value in section.
func (m *KeyStore) WriteValue(section, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	if m.sections[section] == nil {
		m.sections[section] = make(map[string]string)
	}
	m.sections[section][name] = value
	return nil
}

// DeleteValue removes name from section.
func (m *KeyStore) DeleteValue(section, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if values, ok := m.sections[section]; ok {
		delete(values, name)
	}
	return nil
}

// DeleteSection removes a section and all its values.
func (m *KeyStore) DeleteSection(section string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sections, section)
	return nil
}

// HasSection reports whether the section exists.
func (m *KeyStore) HasSection(section string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sections[section]
	return ok
}

// SectionValues returns a copy of a section's values for assertions.
func (m *KeyStore) SectionValues(section string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values := make(map[string]string, len(m.sections[section]))
	for k, v := range m.sections[section] {
		values[k] = v
	}
	return values
}

// Ensure KeyStore implements ports.KeyStore.
var _ ports.KeyStore = (*KeyStore)(nil)
