//go:build !windows

package platform

import (
	"golang.org/x/sys/unix"
)

// IsElevated reports whether the current process runs with root privileges.
func IsElevated() bool {
	return unix.Geteuid() == 0
}

// canWrite reports whether the effective user can write into dir.
func canWrite(dir string) bool {
	return unix.Access(dir, unix.W_OK) == nil
}
