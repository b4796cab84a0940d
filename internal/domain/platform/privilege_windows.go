//go:build windows

package platform

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// IsElevated reports whether the current process runs with an elevated token.
func IsElevated() bool {
	var token windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token); err != nil {
		return false
	}
	defer token.Close()
	return token.IsElevated()
}

// canWrite probes write access by creating and removing a temp file in dir.
// Windows ACLs are not reliably visible through access bits, so an actual
// write attempt is the only trustworthy answer.
func canWrite(dir string) bool {
	probe := filepath.Join(dir, ".metacli-setup-probe.tmp")
	f, err := os.Create(probe)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(probe)
	return true
}
