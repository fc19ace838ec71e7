package recordaccess

import "github.com/calvinalkan/graphrec/pkg/record"

// Proxy is the tracked handle to one record id.
//
// It holds the baseline the record had when it was first tracked and a
// working copy that receives every change. The baseline is never mutated.
type Proxy[R record.Record] struct {
	id      int64
	before  R
	after   R
	created bool
	changed bool
}

// ID returns the record id.
func (p *Proxy[R]) ID() int64 {
	return p.id
}

// ForReading returns the working copy without marking the proxy changed.
// Callers must not mutate the returned record.
func (p *Proxy[R]) ForReading() R {
	return p.after
}

// ForChanging returns the working copy and marks the proxy changed. There is
// no content diffing: restoring the original values still counts as a change.
func (p *Proxy[R]) ForChanging() R {
	p.changed = true

	return p.after
}

// Before returns the baseline: the record as loaded, or the blank record for
// created proxies. Callers must not mutate it.
func (p *Proxy[R]) Before() R {
	return p.before
}

// IsCreated reports whether the proxy started from a blank record instead
// of a stored one.
func (p *Proxy[R]) IsCreated() bool {
	return p.created
}

// IsChanged reports whether the working copy will be written on commit.
func (p *Proxy[R]) IsChanged() bool {
	return p.changed
}
