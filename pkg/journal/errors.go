package journal

import "errors"

var (
	// ErrSchemaVersion indicates the journal was written by a newer version.
	ErrSchemaVersion = errors.New("journal: unsupported schema version")

	// ErrCorrupt indicates a journal row does not decode to a command.
	//
	// Recovery: inspect or delete the journal; pending batches are lost.
	ErrCorrupt = errors.New("journal: corrupt")

	// ErrUnknownBatch indicates no batch with the given sequence number exists.
	ErrUnknownBatch = errors.New("journal: unknown batch")
)
