// Package fs provides the filesystem abstraction used by the record stores.
//
// The main types are:
//   - [FS]: interface for filesystem operations
//   - [File]: interface for open files with positional I/O (satisfied by [os.File])
//   - [Real]: production implementation using [os] package
//   - [Faulty]: testing implementation that fails selected operations
//   - [Locker]: advisory flock(2) locks on lock files
//
// Record stores address fixed-size slots by offset, so [File] exposes
// [io.ReaderAt] and [io.WriterAt] rather than a stream.
package fs

import (
	"io"
	"os"
)

// File represents an OS-backed open file descriptor.
//
// The intent is os-like behavior: implementations must behave like [os.File],
// including that [File.Fd] returns a valid OS file descriptor usable with
// syscalls (for example flock) until the file is closed.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer

	// Fd returns the file descriptor. See [os.File.Fd].
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error

	// Truncate changes the size of the file. See [os.File.Truncate].
	Truncate(size int64) error
}

// FS defines the filesystem operations the stores need.
//
// All methods mirror their [os] package equivalents but can be intercepted
// for testing with fault injection.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FS interface {
	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error

	// WriteFileAtomic replaces path with the contents of r. Readers see
	// either the old or the new file, never a partial one.
	WriteFileAtomic(path string, r io.Reader) error
}
