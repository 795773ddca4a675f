// Package lock keeps two invocations from sharing one scratch tree.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileName is the lock file created inside the output root.
const FileName = ".alsasys.lock"

// ErrBusy is returned when another invocation holds the lock.
var ErrBusy = errors.New("output directory is in use by another invocation")

// Acquire takes the lock on dir without blocking. The returned release
// function unlocks it; the lock file itself is left in place.
func Acquire(dir string) (release func() error, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrBusy, path)
	}
	return fl.Unlock, nil
}
