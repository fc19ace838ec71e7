package record

// NoID terminates record chains and marks absent references.
const NoID int64 = -1

// Limits of the fixed-size layouts.
const (
	// MaxInlineLabels is the number of label ids a node record holds.
	MaxInlineLabels = 6

	// MaxInlineValueBytes is the largest string property value, in bytes.
	MaxInlineValueBytes = 32

	// MaxTokenNameBytes is the longest token name, in bytes.
	MaxTokenNameBytes = 64
)

// Header is embedded in every record.
type Header struct {
	ID    int64
	InUse bool
}

// RecordID returns the id of the record.
func (h *Header) RecordID() int64 {
	return h.ID
}

// IsInUse reports whether the record is live.
func (h *Header) IsInUse() bool {
	return h.InUse
}

// SetInUse marks the record live or deleted.
func (h *Header) SetInUse(inUse bool) {
	h.InUse = inUse
}

// Record is implemented by pointers to the seven record types.
type Record interface {
	Kind() Kind
	RecordID() int64
	IsInUse() bool
	SetInUse(inUse bool)
}

// Compile-time interface satisfaction checks.
var (
	_ Record = (*Node)(nil)
	_ Record = (*Relationship)(nil)
	_ Record = (*RelationshipGroup)(nil)
	_ Record = (*Property)(nil)
	_ Record = (*PropertyKeyToken)(nil)
	_ Record = (*RelationshipTypeToken)(nil)
	_ Record = (*LabelToken)(nil)
)
