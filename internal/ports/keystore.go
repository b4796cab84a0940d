// Package ports defines interfaces for external dependencies.
package ports

// Scope selects which persistent store an operation targets. System scope
// requires elevated privilege; user scope does not.
type Scope string

const (
	// ScopeUser is the per-user store and PATH list.
	ScopeUser Scope = "user"
	// ScopeSystem is the machine-wide store and PATH list.
	ScopeSystem Scope = "system"
)

// String returns the string representation of the scope.
func (s Scope) String() string {
	return string(s)
}

// KeyStore is the registry-equivalent key/value store, scoped to a single
// application namespace. Keys are grouped into named sections; values are
// strings. Implementations must never expose state outside the namespace
// they were opened on.
type KeyStore interface {
	// ReadValue returns the value for name in section. The second return
	// is false when the value is absent; absence is not an error.
	ReadValue(section, name string) (string, bool, error)

	// WriteValue sets name to value in section, creating the section as
	// needed.
	WriteValue(section, name, value string) error

	// DeleteValue removes name from section. Deleting an absent value is
	// a successful no-op.
	DeleteValue(section, name string) error

	// DeleteSection removes a section and all its values. Deleting an
	// absent section is a successful no-op.
	DeleteSection(section string) error

	// HasSection reports whether the section exists.
	HasSection(section string) bool
}
