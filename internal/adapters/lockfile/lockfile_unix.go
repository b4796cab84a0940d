//go:build !windows

package lockfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// InstanceLock is an exclusive advisory lock on a well-known file. The lock
// dies with the process, so a crashed run never wedges later ones.
type InstanceLock struct {
	path string
	file *os.File
}

// Acquire takes the lock backed by the file at path without blocking.
// Returns ErrHeld when another process has it.
func Acquire(path string) (*InstanceLock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if err == unix.EWOULDBLOCK || err == unix.EAGAIN {
			return nil, ErrHeld
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}

	// The PID is informational, for a human inspecting a stale-looking file.
	_ = file.Truncate(0)
	_, _ = fmt.Fprintf(file, "%d\n", os.Getpid())

	return &InstanceLock{path: path, file: file}, nil
}

// Release drops the lock and removes the file. Safe to call twice.
func (l *InstanceLock) Release() error {
	if l.file == nil {
		return nil
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	err := l.file.Close()
	_ = os.Remove(l.path)
	l.file = nil
	return err
}
