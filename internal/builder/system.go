package builder

import (
	"os"
)

// System abstracts the filesystem calls the build pass makes so tests can inject failures.
type System interface {
	MkdirTemp(dir, pattern string) (string, error)
	RemoveAll(path string) error
	ReadFile(name string) ([]byte, error)
}

// RealSystem implements System using actual system calls.
type RealSystem struct{}

// MkdirTemp creates a new temporary directory in dir.
func (RealSystem) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}

// RemoveAll removes path and any children it contains.
func (RealSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// ReadFile reads the named file and returns the contents.
func (RealSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}
