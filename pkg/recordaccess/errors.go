package recordaccess

import "errors"

var (
	// ErrUnsupported is returned by SchemaRuleChanges: record access sets
	// do not track schema records.
	//
	// This is a capability gap, not a transient fault. Do not retry.
	ErrUnsupported = errors.New("recordaccess: schema rule changes are not tracked")

	// ErrCommitted indicates Commit was called on a set that already
	// committed (or failed to).
	//
	// This is a programming error. Start a new set for further changes.
	ErrCommitted = errors.New("recordaccess: already committed")
)
