package pipeline

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrOutputLocked means another run holds the output directory.
var ErrOutputLocked = errors.New("output directory is in use by another mutecut run")

func lockOutputDir(outDir string) (func(), error) {
	path := lockPath(outDir)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrOutputLocked, path)
	}
	return func() { _ = lock.Unlock() }, nil
}
