//go:build windows

package lockfile

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

// InstanceLock is a named mutex scoped across all sessions. The mutex dies
// with the process, so a crashed run never wedges later ones.
type InstanceLock struct {
	handle windows.Handle
}

// Acquire takes the mutex named after the lock file's base name without
// blocking. Returns ErrHeld when another process has it.
func Acquire(path string) (*InstanceLock, error) {
	name, err := windows.UTF16PtrFromString("Global\\" + mutexName(path))
	if err != nil {
		return nil, fmt.Errorf("build mutex name: %w", err)
	}

	handle, err := windows.CreateMutex(nil, false, name)
	if err != nil {
		if err == windows.ERROR_ALREADY_EXISTS {
			if handle != 0 {
				_ = windows.CloseHandle(handle)
			}
			return nil, ErrHeld
		}
		return nil, fmt.Errorf("create mutex: %w", err)
	}

	return &InstanceLock{handle: handle}, nil
}

// Release drops the mutex. Safe to call twice.
func (l *InstanceLock) Release() error {
	if l.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(l.handle)
	l.handle = 0
	return err
}

// mutexName derives a session-global mutex name from the lock file path.
func mutexName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
