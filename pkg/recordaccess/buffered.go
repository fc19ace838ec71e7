package recordaccess

import (
	"fmt"

	"github.com/calvinalkan/graphrec/pkg/record"
)

// Command is one changed record as handed to a [CommandSink].
type Command struct {
	Kind record.Kind
	ID   int64

	// Before is the baseline; the blank record when Created is true.
	Before record.Record

	// After is the working copy to apply.
	After record.Record

	Created bool
}

// CommandSink receives the changes of a [Buffered] commit.
type CommandSink interface {
	Apply(cmds []Command) error
}

// CommandSinkFunc adapts a function to a [CommandSink].
type CommandSinkFunc func(cmds []Command) error

// Apply calls f.
func (f CommandSinkFunc) Apply(cmds []Command) error { return f(cmds) }

// Buffered is a record access set that never writes to the stores. Stores
// are only read, to load records. Commit hands every change to a sink, for
// example a transaction log, in [record.Kinds] order and ascending ids.
//
// Since nothing is written, no id generator is reconciled.
type Buffered struct {
	trackers

	sink      CommandSink
	committed bool
}

// NewBuffered returns a set loading from stores and committing to sink.
// Panics if a store or sink is nil.
func NewBuffered(stores StoreSet, sink CommandSink) *Buffered {
	if sink == nil {
		panic("recordaccess: command sink is nil")
	}

	return &Buffered{
		trackers: newTrackers(stores),
		sink:     sink,
	}
}

// Commit passes the changes to the sink. Sets without changes skip the sink.
// A changed record that does not fit its layout fails the commit with
// [record.ErrInvalid] before the sink is called.
// Commit runs at most once; later calls return [ErrCommitted].
func (b *Buffered) Commit() error {
	if b.committed {
		return ErrCommitted
	}

	b.committed = true

	cmds := b.Commands()
	if len(cmds) == 0 {
		return nil
	}

	err := b.check()
	if err != nil {
		return err
	}

	err = b.sink.Apply(cmds)
	if err != nil {
		return fmt.Errorf("apply %d commands: %w", len(cmds), err)
	}

	return nil
}
