package keystore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *INIStore {
	t.Helper()
	return NewINIStore(filepath.Join(t.TempDir(), "registry.ini"))
}

func TestINIStore_Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.ini")
	assert.Equal(t, path, NewINIStore(path).Path())
}

func TestINIStore_WriteReadRoundtrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteValue("install", "Version", "1.2.3"))

	got, ok, err := store.ReadValue("install", "Version")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.2.3", got)
}

func TestINIStore_ReadMissingFile(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.ReadValue("install", "Version")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestINIStore_ReadAbsentKey(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.WriteValue("install", "Version", "1.2.3"))

	_, ok, err := store.ReadValue("install", "Missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.ReadValue("missing-section", "Version")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestINIStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.ini")

	first := NewINIStore(path)
	require.NoError(t, first.WriteValue("install", "InstallPath", "/opt/metacli"))

	second := NewINIStore(path)
	got, ok, err := second.ReadValue("install", "InstallPath")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/opt/metacli", got)
}

func TestINIStore_DeleteValue(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.WriteValue("install", "Version", "1.2.3"))
	require.NoError(t, store.WriteValue("install", "InstallPath", "/opt/metacli"))

	require.NoError(t, store.DeleteValue("install", "Version"))

	_, ok, err := store.ReadValue("install", "Version")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.ReadValue("install", "InstallPath")
	require.NoError(t, err)
	assert.True(t, ok, "sibling values survive a delete")
}

func TestINIStore_DeleteAbsentIsNoOp(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.DeleteValue("install", "Version"))
	assert.NoError(t, store.DeleteSection("install"))

	require.NoError(t, store.WriteValue("install", "Version", "1.2.3"))
	assert.NoError(t, store.DeleteValue("install", "Missing"))
	assert.NoError(t, store.DeleteSection("missing"))
}

func TestINIStore_DeleteSection(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.WriteValue("install", "Version", "1.2.3"))
	require.NoError(t, store.WriteValue("environment", "Path", "/opt/metacli"))

	require.NoError(t, store.DeleteSection("install"))

	assert.False(t, store.HasSection("install"))
	assert.True(t, store.HasSection("environment"))
}

func TestINIStore_HasSection(t *testing.T) {
	store := newTestStore(t)
	assert.False(t, store.HasSection("install"))

	require.NoError(t, store.WriteValue("install", "Version", "1.2.3"))
	assert.True(t, store.HasSection("install"))
}

func TestINIStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metacli", "registry.ini")
	store := NewINIStore(path)

	require.NoError(t, store.WriteValue("install", "Version", "1.2.3"))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestINIStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewINIStore(filepath.Join(dir, "registry.ini"))

	require.NoError(t, store.WriteValue("install", "Version", "1.2.3"))
	require.NoError(t, store.WriteValue("install", "Version", "1.2.4"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "registry.ini", entries[0].Name())
}
