package readme

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockFileNameTemplateConstant         = "profile-scripts-%s.lock"
	lockKeyLengthConstant                = 16
	readmeLockedMessageConstant          = "README is being updated by another run"
	lockAcquireErrorTemplateConstant     = "unable to lock README %s: %w"
	lockLockedErrorTemplateConstant      = "%w: %s"
	lockPathResolveErrorTemplateConstant = "unable to resolve README path %s: %w"
)

// ErrReadmeLocked indicates another run holds the lock for the same README.
var ErrReadmeLocked = errors.New(readmeLockedMessageConstant)

// Locker hands out per-README run locks stored in a directory outside the profile repository.
// Lock files are not removed on Release: each README keeps one small file that
// later runs lock again. Removing it after unlocking would let a waiting run
// lock an unlinked inode while a new run creates a fresh file at the same path.
type Locker struct {
	directory string
}

// NewLocker creates a Locker storing lock files in directory. An empty directory selects the OS temp directory.
func NewLocker(directory string) Locker {
	if len(directory) == 0 {
		directory = os.TempDir()
	}
	return Locker{directory: directory}
}

// RunLock is a held README lock.
type RunLock struct {
	fileLock *flock.Flock
}

// Acquire takes the lock for readmePath without blocking.
func (locker Locker) Acquire(readmePath string) (*RunLock, error) {
	lockPath, resolveError := locker.LockPath(readmePath)
	if resolveError != nil {
		return nil, resolveError
	}

	fileLock := flock.New(lockPath)
	locked, lockError := fileLock.TryLock()
	if lockError != nil {
		return nil, fmt.Errorf(lockAcquireErrorTemplateConstant, readmePath, lockError)
	}
	if !locked {
		return nil, fmt.Errorf(lockLockedErrorTemplateConstant, ErrReadmeLocked, readmePath)
	}
	return &RunLock{fileLock: fileLock}, nil
}

// LockPath returns the lock file used for readmePath.
func (locker Locker) LockPath(readmePath string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(readmePath)
	if absoluteError != nil {
		return "", fmt.Errorf(lockPathResolveErrorTemplateConstant, readmePath, absoluteError)
	}
	digest := sha256.Sum256([]byte(absolutePath))
	key := hex.EncodeToString(digest[:])[:lockKeyLengthConstant]
	return filepath.Join(locker.directory, fmt.Sprintf(lockFileNameTemplateConstant, key)), nil
}

// Release unlocks the README. The lock file stays in place for the next run.
func (runLock *RunLock) Release() error {
	if runLock == nil || runLock.fileLock == nil {
		return nil
	}
	return runLock.fileLock.Unlock()
}
