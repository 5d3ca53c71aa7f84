// Package filex holds small filesystem helpers.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir makes path absolute and creates the directory that will
// hold it.
func EnsureParentDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return abs, nil
}

// AtomicFile is written under a temporary name next to its target and only
// replaces the target on Commit.
type AtomicFile struct {
	*os.File
	path string
	done bool
}

// CreateAtomic starts writing path. Exactly one of Commit or Abort must
// follow.
func CreateAtomic(path string) (*AtomicFile, error) {
	abs, err := EnsureParentDir(path)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(filepath.Dir(abs), "."+filepath.Base(abs)+".*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &AtomicFile{File: f, path: abs}, nil
}

// Path is the final location of the file.
func (f *AtomicFile) Path() string {
	return f.path
}

// Commit flushes the data and renames it into place.
func (f *AtomicFile) Commit() error {
	if f.done {
		return errors.New("atomic file already finished")
	}
	f.done = true

	err := errors.Join(f.Sync(), f.Chmod(0o644), f.Close())
	if err == nil {
		err = os.Rename(f.Name(), f.path)
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("commit %s: %w", f.path, err)
	}
	return nil
}

// Abort discards everything written. It is a no-op after Commit.
func (f *AtomicFile) Abort() error {
	if f.done {
		return nil
	}
	f.done = true

	_ = f.Close()
	return os.Remove(f.Name())
}
