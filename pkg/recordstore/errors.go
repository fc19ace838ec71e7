package recordstore

import "errors"

var (
	// ErrNotFound indicates no in-use record exists at the requested id.
	ErrNotFound = errors.New("recordstore: not found")

	// ErrCorrupt indicates the store file or a record slot is damaged.
	//
	// Recovery: repair the affected records or restore the store.
	ErrCorrupt = errors.New("recordstore: corrupt")

	// ErrInvalidID indicates an id outside [0, capacity).
	//
	// This is a programming error.
	ErrInvalidID = errors.New("recordstore: invalid id")

	// ErrIncompatible indicates an existing store file was created for a
	// different kind, record size, or capacity.
	ErrIncompatible = errors.New("recordstore: incompatible")

	// ErrClosed indicates the store has already been closed.
	ErrClosed = errors.New("recordstore: closed")
)
