package fs

import (
	"errors"
	"io"
	"os"

	"github.com/natefinch/atomic"
)

// Compile-time interface satisfaction checks.
var (
	_ FS   = (*Real)(nil)
	_ File = (*os.File)(nil)
)

// Real implements [FS] using the real filesystem.
//
// All methods are pure passthroughs to the [os] package with identical
// behavior and error semantics, except [Real.Exists] which wraps [os.Stat].
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// A passthrough wrapper for [os.OpenFile].
func (*Real) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		// Avoid returning a typed nil *os.File inside a non-nil interface.
		return nil, err
	}

	return f, nil
}

// A passthrough wrapper for [os.ReadFile].
func (*Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// A passthrough wrapper for [os.MkdirAll].
func (*Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// A passthrough wrapper for [os.Stat].
func (*Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Exists reports whether path exists.
func (*Real) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// A passthrough wrapper for [os.Remove].
func (*Real) Remove(path string) error {
	return os.Remove(path)
}

// WriteFileAtomic writes r to a temporary file in the same directory and
// renames it over path. See [atomic.WriteFile].
func (*Real) WriteFileAtomic(path string, r io.Reader) error {
	return atomic.WriteFile(path, r)
}
