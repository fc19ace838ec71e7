package record

import "errors"

var (
	// ErrInvalid indicates a record does not fit its fixed-size layout.
	//
	// Common causes: too many labels on a node, a token name or string
	// property value longer than the inline limit.
	//
	// This is a programming error in the caller building the record.
	ErrInvalid = errors.New("record: invalid")

	// ErrMalformed indicates encoded bytes do not decode to a valid record.
	//
	// Stores report it wrapped in their own corruption error.
	ErrMalformed = errors.New("record: malformed")

	// ErrUnknownKind indicates a kind name or number is not one of [Kinds].
	ErrUnknownKind = errors.New("record: unknown kind")
)
