// Package lockedfile provides a file-based mutex guarding directories
// shared across vaultbuild processes, such as the staged OpenSSL prefix.
package lockedfile

import (
	"fmt"
	"os"
)

// Mutex is an exclusive advisory lock backed by a file. The file is
// created on first Lock and never removed; only the lock is released.
type Mutex struct {
	Path string
}

// MutexAt returns a Mutex for the file at path.
func MutexAt(path string) *Mutex {
	return &Mutex{Path: path}
}

// Lock acquires the lock, blocking until it is available, and returns
// a function releasing it.
func (mu *Mutex) Lock() (unlock func(), err error) {
	if mu.Path == "" {
		panic("lockedfile.Mutex: missing Path during Lock")
	}
	f, err := os.OpenFile(mu.Path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := lock(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", mu.Path, err)
	}
	return func() {
		unlockFile(f)
		f.Close()
	}, nil
}
