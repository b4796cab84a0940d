// Package lockfile provides the cross-process instance lock. Two setup
// processes mutating the same store and install tree at once would corrupt
// both, so every lifecycle run takes the lock before touching any state.
package lockfile

import "errors"

// ErrHeld means another setup process holds the instance lock.
var ErrHeld = errors.New("another setup instance is running")
