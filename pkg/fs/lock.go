package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

var (
	// ErrWouldBlock is returned by [Locker.TryLock] when the lock is held
	// by another process.
	ErrWouldBlock = errors.New("lock would block")

	// errInodeMismatch is an internal sentinel indicating the lock file was
	// replaced between open and flock. Callers retry.
	errInodeMismatch = errors.New("inode mismatch")
)

const (
	lockFilePerm = 0o600
	lockDirPerm  = 0o755

	maxLockAttempts = 16
	maxEINTRRetries = 10000
)

// Locker provides exclusive, advisory file locks using flock(2).
//
// flock applies to an inode, not a pathname. Locker verifies that the locked
// descriptor still refers to the file at path once the lock is held, and
// retries if the file was replaced in between.
//
// This implementation is Unix-only.
type Locker struct {
	fs    FS
	flock func(fd int, how int) error
}

// NewLocker creates a Locker that uses the given filesystem for file operations.
func NewLocker(fs FS) *Locker {
	return &Locker{
		fs:    fs,
		flock: unix.Flock,
	}
}

// Lock represents a held file lock. Call [Lock.Close] to release it.
type Lock struct {
	mu    sync.Mutex
	file  File
	flock func(fd int, how int) error
}

// Close releases the lock and closes the underlying file descriptor.
// Close is idempotent.
func (lk *Lock) Close() error {
	lk.mu.Lock()
	defer lk.mu.Unlock()

	if lk.file == nil {
		return nil
	}

	fd := int(lk.file.Fd())

	unlockErr := flockRetryEINTR(lk.flock, fd, unix.LOCK_UN)
	closeErr := lk.file.Close()
	lk.file = nil

	if unlockErr != nil {
		unlockErr = fmt.Errorf("unlocking lock: %w", unlockErr)
	}

	if closeErr != nil {
		closeErr = fmt.Errorf("closing lock fd: %w", closeErr)
	}

	return errors.Join(unlockErr, closeErr)
}

// TryLock acquires an exclusive lock on the file at path without waiting.
//
// The file and its parent directories are created if missing. Returns
// [ErrWouldBlock] if another process holds the lock.
func (l *Locker) TryLock(path string) (*Lock, error) {
	for range maxLockAttempts {
		file, err := l.openLockFile(path)
		if err != nil {
			return nil, fmt.Errorf("open lock file: %w", err)
		}

		err = l.acquire(file, path)
		if err == nil {
			return &Lock{file: file, flock: l.flock}, nil
		}

		_ = file.Close()

		if !errors.Is(err, errInodeMismatch) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("lock file %q kept changing while locking", path)
}

func (l *Locker) acquire(file File, path string) error {
	fd := int(file.Fd())

	err := flockRetryEINTR(l.flock, fd, unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			return ErrWouldBlock
		}

		return fmt.Errorf("flock: %w", err)
	}

	match, err := l.inodeMatchesPath(path, file)
	if err == nil && match {
		return nil
	}

	_ = flockRetryEINTR(l.flock, fd, unix.LOCK_UN)

	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("verifying inode match: %w", err)
	}

	return errInodeMismatch
}

func (l *Locker) openLockFile(path string) (File, error) {
	f, err := l.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, lockFilePerm)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return f, err
	}

	err = l.fs.MkdirAll(filepath.Dir(path), lockDirPerm)
	if err != nil {
		return nil, err
	}

	return l.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, lockFilePerm)
}

// inodeMatchesPath compares (dev, inode) of the open descriptor with the
// file currently at path.
func (l *Locker) inodeMatchesPath(path string, f File) (bool, error) {
	openInfo, err := f.Stat()
	if err != nil {
		return false, err
	}

	openSys, ok := openInfo.Sys().(*syscall.Stat_t)
	if !ok || openSys == nil {
		return false, fmt.Errorf("file.Stat Sys=%T, want *syscall.Stat_t", openInfo.Sys())
	}

	pathInfo, err := l.fs.Stat(path)
	if err != nil {
		return false, err
	}

	pathSys, ok := pathInfo.Sys().(*syscall.Stat_t)
	if !ok || pathSys == nil {
		return false, fmt.Errorf("fs.Stat Sys=%T, want *syscall.Stat_t", pathInfo.Sys())
	}

	return openSys.Dev == pathSys.Dev && openSys.Ino == pathSys.Ino, nil
}

// flockRetryEINTR wraps flock, retrying on EINTR a bounded number of times.
func flockRetryEINTR(flock func(fd int, how int) error, fd int, how int) error {
	var err error
	for range maxEINTRRetries {
		err = flock(fd, how)
		if err == nil || !errors.Is(err, unix.EINTR) {
			return err
		}
	}

	return err
}
