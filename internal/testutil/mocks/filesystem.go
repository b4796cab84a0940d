// Package mocks provides test doubles for testing.
package mocks

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/metacli/setup/internal/ports"
)

// FileSystem is a thread-safe in-memory test double for ports.FileSystem.
type FileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool

	// Failure injection keyed by destination path.
	copyErrors   map[string]error
	writeErrors  map[string]error
	removeAllErr error
}

// NewFileSystem creates a new FileSystem mock.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:       make(map[string][]byte),
		dirs:        make(map[string]bool),
		copyErrors:  make(map[string]error),
		writeErrors: make(map[string]error),
	}
}

// AddFile adds a file to the mock filesystem, creating parent directories.
func (fs *FileSystem) AddFile(path string, content string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = []byte(content)
	fs.addParents(path)
}

// AddDir adds a directory to the mock filesystem.
func (fs *FileSystem) AddDir(path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.dirs[path] = true
	fs.addParents(path)
}

// FailCopyTo makes CopyFile to dest fail with err.
func (fs *FileSystem) FailCopyTo(dest string, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.copyErrors[dest] = err
}

// FailWriteTo makes WriteFile to path fail with err.
func (fs *FileSystem) FailWriteTo(path string, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.writeErrors[path] = err
}

// FailRemoveAll makes every RemoveAll call fail with err.
func (fs *FileSystem) FailRemoveAll(err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.removeAllErr = err
}

// ReadFile reads a file from the mock filesystem.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if content, ok := fs.files[path]; ok {
		return content, nil
	}
	return nil, fmt.Errorf("file not found: %s", path)
}

// WriteFile writes a file, creating parent directories.
func (fs *FileSystem) WriteFile(path string, data []byte, _ os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err, ok := fs.writeErrors[path]; ok {
		return err
	}
	fs.files[path] = data
	fs.addParents(path)
	return nil
}

// Exists checks whether a file or directory exists.
func (fs *FileSystem) Exists(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, fileExists := fs.files[path]
	return fileExists || fs.dirs[path]
}

// Remove removes a single file or empty directory.
func (fs *FileSystem) Remove(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.files, path)
	delete(fs.dirs, path)
	return nil
}

// RemoveAll removes a path and everything under it.
func (fs *FileSystem) RemoveAll(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.removeAllErr != nil {
		return fs.removeAllErr
	}
	prefix := path + string(filepath.Separator)
	for p := range fs.files {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(fs.files, p)
		}
	}
	for p := range fs.dirs {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(fs.dirs, p)
		}
	}
	return nil
}

// MkdirAll creates a directory and its parents.
func (fs *FileSystem) MkdirAll(path string, _ os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.dirs[path] = true
	fs.addParents(path)
	return nil
}

// ReadDir returns the names of the immediate children of path, sorted.
func (fs *FileSystem) ReadDir(path string) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if !fs.dirs[path] {
		return nil, fmt.Errorf("directory not found: %s", path)
	}

	seen := make(map[string]bool)
	prefix := path + string(filepath.Separator)
	collect := func(p string) {
		if !strings.HasPrefix(p, prefix) {
			return
		}
		rest := strings.TrimPrefix(p, prefix)
		if idx := strings.IndexRune(rest, filepath.Separator); idx >= 0 {
			rest = rest[:idx]
		}
		if rest != "" {
			seen[rest] = true
		}
	}
	for p := range fs.files {
		collect(p)
	}
	for p := range fs.dirs {
		collect(p)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// IsDir reports whether path is a directory.
func (fs *FileSystem) IsDir(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.dirs[path]
}

// CopyFile copies a file within the mock filesystem.
func (fs *FileSystem) CopyFile(src, dest string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err, ok := fs.copyErrors[dest]; ok {
		return err
	}
	content, ok := fs.files[src]
	if !ok {
		return fmt.Errorf("file not found: %s", src)
	}
	data := make([]byte, len(content))
	copy(data, content)
	fs.files[dest] = data
	fs.addParents(dest)
	return nil
}

// GetFileInfo returns metadata for a path.
func (fs *FileSystem) GetFileInfo(path string) (ports.FileInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if content, ok := fs.files[path]; ok {
		return ports.FileInfo{
			Size:    int64(len(content)),
			Mode:    0o644,
			ModTime: time.Now(),
		}, nil
	}
	if fs.dirs[path] {
		return ports.FileInfo{Mode: os.ModeDir | 0o755, IsDir: true, ModTime: time.Now()}, nil
	}
	return ports.FileInfo{}, fmt.Errorf("path not found: %s", path)
}

// Files returns a snapshot of all file paths, sorted.
func (fs *FileSystem) Files() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	paths := make([]string, 0, len(fs.files))
	for p := range fs.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// addParents registers every ancestor directory of path. Caller holds the
// lock.
func (fs *FileSystem) addParents(path string) {
	for dir := filepath.Dir(path); dir != "." && dir != string(filepath.Separator) && dir != ""; dir = filepath.Dir(dir) {
		if fs.dirs[dir] {
			break
		}
		fs.dirs[dir] = true
	}
}

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
