package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metacli/setup/internal/ports"
)

func TestDefaultInstallDir(t *testing.T) {
	tests := []struct {
		name  string
		scope ports.Scope
		goos  string
		want  string
	}{
		{"user linux", ports.ScopeUser, "linux", "/home/test/.local/opt/metacli"},
		{"user darwin", ports.ScopeUser, "darwin", "/home/test/.local/opt/metacli"},
		{"system linux", ports.ScopeSystem, "linux", "/opt/metacli"},
		{"system darwin", ports.ScopeSystem, "darwin", "/Applications/MetaCLI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPathsWithRoot(tt.scope, "/home/test", tt.goos)
			assert.Equal(t, tt.want, p.DefaultInstallDir())
		})
	}
}

func TestDefaultInstallDir_WindowsUser(t *testing.T) {
	p := NewPathsWithRoot(ports.ScopeUser, `C:\Users\test`, "windows")
	got := p.DefaultInstallDir()
	assert.Equal(t, filepath.Join(`C:\Users\test`, "AppData", "Local", "Programs", "MetaCLI"), got)
}

func TestStoreFile(t *testing.T) {
	user := NewPathsWithRoot(ports.ScopeUser, "/home/test", "linux")
	assert.Equal(t, "/home/test/.config/metacli/registry.ini", user.StoreFile())

	system := NewPathsWithRoot(ports.ScopeSystem, "/home/test", "linux")
	assert.Equal(t, "/etc/metacli/registry.ini", system.StoreFile())
}

func TestShortcutDirs(t *testing.T) {
	p := NewPathsWithRoot(ports.ScopeUser, "/home/test", "linux")
	assert.Equal(t, "/home/test/Desktop", p.DesktopShortcutDir())
	assert.Equal(t, "/home/test/.local/share/applications", p.StartMenuShortcutDir())

	system := NewPathsWithRoot(ports.ScopeSystem, "/home/test", "linux")
	assert.Equal(t, "/usr/share/applications", system.StartMenuShortcutDir())
}

func TestScope(t *testing.T) {
	p := NewPathsWithRoot(ports.ScopeSystem, "/home/test", "linux")
	assert.Equal(t, ports.ScopeSystem, p.Scope())
}

func TestRequiresElevation_ProtectedRoots(t *testing.T) {
	tests := []struct {
		dir  string
		goos string
		want bool
	}{
		{"/opt/metacli", "linux", true},
		{"/usr/local/bin", "linux", true},
		{"/etc/metacli", "linux", true},
		{"/Applications/MetaCLI", "darwin", true},
		{"/Library/MetaCLI", "darwin", true},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			assert.Equal(t, tt.want, requiresElevation(tt.dir, tt.goos))
		})
	}
}

func TestRequiresElevation_WritableDir(t *testing.T) {
	// A temp dir is writable by the test process, and a not-yet-existing
	// child is judged by its nearest existing ancestor.
	dir := t.TempDir()
	assert.False(t, requiresElevation(dir, "linux"))
	assert.False(t, requiresElevation(filepath.Join(dir, "metacli", "deep"), "linux"))
}

func TestIsUnder(t *testing.T) {
	assert.True(t, isUnder("/opt/metacli", "/opt"))
	assert.True(t, isUnder("/opt", "/opt"))
	assert.False(t, isUnder("/optical", "/opt"))
	assert.False(t, isUnder("/home/test", "/opt"))
}

func TestNearestExisting(t *testing.T) {
	dir := t.TempDir()
	got := nearestExisting(filepath.Join(dir, "a", "b", "c"))
	require.Equal(t, dir, got)
}

func TestScopeFor(t *testing.T) {
	assert.Equal(t, ports.ScopeUser, ScopeFor(t.TempDir()))
}
