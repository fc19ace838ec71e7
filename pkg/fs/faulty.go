package fs

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"
)

// FaultyConfig selects which operations [Faulty] fails.
//
// The zero value injects nothing.
type FaultyConfig struct {
	// PathSuffix restricts injection to files whose path ends with it.
	// Empty matches every file.
	PathSuffix string

	// FailWrites makes File.WriteAt and WriteFileAtomic fail with EIO once
	// WritesBeforeFailure writes have succeeded on matching files.
	FailWrites          bool
	WritesBeforeFailure int

	// FailReads makes File.ReadAt fail with EIO on matching files.
	FailReads bool

	// FailSync makes File.Sync fail with EIO on matching files.
	FailSync bool
}

// InjectedError marks an error as intentionally injected by [Faulty].
//
// It wraps the underlying error so errors.Is/As continue to work.
type InjectedError struct {
	Err error
}

// Error returns the underlying error's message.
func (e *InjectedError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any wrapped error) was injected by [Faulty].
func IsInjected(err error) bool {
	var injected *InjectedError

	return errors.As(err, &injected)
}

// Faulty wraps an [FS] and fails file operations according to its config.
//
// Only operations on open files and WriteFileAtomic are affected; other
// path operations pass through.
// Faulty is safe for concurrent use.
type Faulty struct {
	fs FS

	mu     sync.Mutex
	cfg    FaultyConfig
	writes int
}

var _ FS = (*Faulty)(nil)

// NewFaulty returns a Faulty over fs. Panics if fs is nil.
func NewFaulty(fs FS, cfg FaultyConfig) *Faulty {
	if fs == nil {
		panic("fs is nil")
	}

	return &Faulty{fs: fs, cfg: cfg}
}

// SetConfig replaces the config and resets the write counter.
func (f *Faulty) SetConfig(cfg FaultyConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cfg = cfg
	f.writes = 0
}

// OpenFile opens path on the wrapped FS. Files matching the config's
// PathSuffix are returned wrapped so their operations can fail.
func (f *Faulty) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	file, err := f.fs.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	suffix := f.cfg.PathSuffix
	f.mu.Unlock()

	if !strings.HasSuffix(path, suffix) {
		return file, nil
	}

	return &faultyFile{File: file, path: path, owner: f}, nil
}

// ReadFile passes through.
func (f *Faulty) ReadFile(path string) ([]byte, error) { return f.fs.ReadFile(path) }

// MkdirAll passes through.
func (f *Faulty) MkdirAll(path string, perm os.FileMode) error { return f.fs.MkdirAll(path, perm) }

// Stat passes through.
func (f *Faulty) Stat(path string) (os.FileInfo, error) { return f.fs.Stat(path) }

// Exists passes through.
func (f *Faulty) Exists(path string) (bool, error) { return f.fs.Exists(path) }

// Remove passes through.
func (f *Faulty) Remove(path string) error { return f.fs.Remove(path) }

// WriteFileAtomic fails matching paths like a file write, leaving the
// existing file untouched. Other paths pass through.
func (f *Faulty) WriteFileAtomic(path string, r io.Reader) error {
	if strings.HasSuffix(path, f.config().PathSuffix) && f.shouldFailWrite() {
		return injected("write", path)
	}

	return f.fs.WriteFileAtomic(path, r)
}

func (f *Faulty) shouldFailWrite() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.cfg.FailWrites {
		return false
	}

	if f.writes < f.cfg.WritesBeforeFailure {
		f.writes++

		return false
	}

	return true
}

func (f *Faulty) config() FaultyConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.cfg
}

type faultyFile struct {
	File

	path  string
	owner *Faulty
}

func (f *faultyFile) WriteAt(p []byte, off int64) (int, error) {
	if f.owner.shouldFailWrite() {
		return 0, injected("write", f.path)
	}

	return f.File.WriteAt(p, off)
}

func (f *faultyFile) ReadAt(p []byte, off int64) (int, error) {
	if f.owner.config().FailReads {
		return 0, injected("read", f.path)
	}

	return f.File.ReadAt(p, off)
}

func (f *faultyFile) Sync() error {
	if f.owner.config().FailSync {
		return injected("sync", f.path)
	}

	return f.File.Sync()
}

func injected(op, path string) error {
	return &InjectedError{Err: &os.PathError{Op: op, Path: path, Err: syscall.EIO}}
}
