package idgen

import "errors"

var (
	// ErrExhausted indicates the generator has handed out every id below
	// its capacity.
	//
	// Recovery: recreate the store with a larger capacity.
	ErrExhausted = errors.New("idgen: exhausted")

	// ErrCorrupt indicates a watermark file could not be parsed or holds
	// inconsistent values.
	//
	// Recovery: rebuild the watermark from the store contents.
	ErrCorrupt = errors.New("idgen: corrupt")
)
