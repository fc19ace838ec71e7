package recordaccess

import (
	"fmt"

	"github.com/calvinalkan/graphrec/pkg/idgen"
	"github.com/calvinalkan/graphrec/pkg/record"
)

// RecordAccessSet is the capability set shared by all record access set
// variants.
type RecordAccessSet interface {
	NodeRecords() *Tracker[*record.Node]
	PropertyRecords() *Tracker[*record.Property]
	RelationshipRecords() *Tracker[*record.Relationship]
	RelationshipGroupRecords() *Tracker[*record.RelationshipGroup]
	PropertyKeyTokenRecords() *Tracker[*record.PropertyKeyToken]
	RelationshipTypeTokenRecords() *Tracker[*record.RelationshipTypeToken]
	LabelTokenRecords() *Tracker[*record.LabelToken]

	// SchemaRuleChanges always fails with [ErrUnsupported].
	SchemaRuleChanges() (*Tracker[record.Record], error)

	// HasChanges reports whether ChangeSize() > 0.
	HasChanges() bool

	// ChangeSize returns the number of changed proxies across all kinds.
	ChangeSize() int

	// Commit applies every change. A set commits at most once.
	Commit() error
}

// Compile-time interface satisfaction checks.
var (
	_ RecordAccessSet = (*Direct)(nil)
	_ RecordAccessSet = (*Buffered)(nil)
)

// StoreSet holds the store of every record kind. All fields are required.
type StoreSet struct {
	Nodes                  Store[*record.Node]
	Properties             Store[*record.Property]
	Relationships          Store[*record.Relationship]
	RelationshipGroups     Store[*record.RelationshipGroup]
	PropertyKeyTokens      Store[*record.PropertyKeyToken]
	RelationshipTypeTokens Store[*record.RelationshipTypeToken]
	LabelTokens            Store[*record.LabelToken]
}

// IDGenerators enumerates the id generators reconciled after a commit.
// [idgen.Factory] implements it.
type IDGenerators interface {
	Visit(fn func(idgen.Reconciler))
}

// trackers is the tracking state shared by the set variants.
type trackers struct {
	nodes                  *Tracker[*record.Node]
	properties             *Tracker[*record.Property]
	relationships          *Tracker[*record.Relationship]
	relationshipGroups     *Tracker[*record.RelationshipGroup]
	propertyKeyTokens      *Tracker[*record.PropertyKeyToken]
	relationshipTypeTokens *Tracker[*record.RelationshipTypeToken]
	labelTokens            *Tracker[*record.LabelToken]

	// all lists the trackers in flush order, see [record.Kinds].
	all [record.KindCount]trackable
}

func newTrackers(stores StoreSet) trackers {
	t := trackers{
		nodes:                  newTracker(record.KindNode, stores.Nodes, NodeLoader),
		properties:             newTracker(record.KindProperty, stores.Properties, PropertyLoader),
		relationships:          newTracker(record.KindRelationship, stores.Relationships, RelationshipLoader),
		relationshipGroups:     newTracker(record.KindRelationshipGroup, stores.RelationshipGroups, RelationshipGroupLoader),
		propertyKeyTokens:      newTracker(record.KindPropertyKeyToken, stores.PropertyKeyTokens, PropertyKeyTokenLoader),
		relationshipTypeTokens: newTracker(record.KindRelationshipTypeToken, stores.RelationshipTypeTokens, RelationshipTypeTokenLoader),
		labelTokens:            newTracker(record.KindLabelToken, stores.LabelTokens, LabelTokenLoader),
	}

	t.all = [record.KindCount]trackable{
		t.nodes,
		t.properties,
		t.relationships,
		t.relationshipGroups,
		t.propertyKeyTokens,
		t.relationshipTypeTokens,
		t.labelTokens,
	}

	return t
}

// NodeRecords returns the node tracker.
func (t *trackers) NodeRecords() *Tracker[*record.Node] { return t.nodes }

// PropertyRecords returns the property tracker.
func (t *trackers) PropertyRecords() *Tracker[*record.Property] { return t.properties }

// RelationshipRecords returns the relationship tracker.
func (t *trackers) RelationshipRecords() *Tracker[*record.Relationship] { return t.relationships }

// RelationshipGroupRecords returns the relationship group tracker.
func (t *trackers) RelationshipGroupRecords() *Tracker[*record.RelationshipGroup] {
	return t.relationshipGroups
}

// PropertyKeyTokenRecords returns the property key token tracker.
func (t *trackers) PropertyKeyTokenRecords() *Tracker[*record.PropertyKeyToken] {
	return t.propertyKeyTokens
}

// RelationshipTypeTokenRecords returns the relationship type token tracker.
func (t *trackers) RelationshipTypeTokenRecords() *Tracker[*record.RelationshipTypeToken] {
	return t.relationshipTypeTokens
}

// LabelTokenRecords returns the label token tracker.
func (t *trackers) LabelTokenRecords() *Tracker[*record.LabelToken] { return t.labelTokens }

// SchemaRuleChanges always returns [ErrUnsupported]; no tracker exists for
// schema records.
func (*trackers) SchemaRuleChanges() (*Tracker[record.Record], error) {
	return nil, ErrUnsupported
}

// HasChanges reports whether any tracker holds a changed proxy.
func (t *trackers) HasChanges() bool {
	for _, tr := range t.all {
		if tr.ChangeSize() > 0 {
			return true
		}
	}

	return false
}

// ChangeSize returns the number of changed proxies across all trackers.
func (t *trackers) ChangeSize() int {
	total := 0
	for _, tr := range t.all {
		total += tr.ChangeSize()
	}

	return total
}

// check validates the changed records of every kind, in kind order.
func (t *trackers) check() error {
	for _, tr := range t.all {
		err := tr.check()
		if err != nil {
			return fmt.Errorf("commit %s records: %w", tr.Kind(), err)
		}
	}

	return nil
}

// Commands returns one [Command] per changed proxy, ordered by kind and id.
func (t *trackers) Commands() []Command {
	var cmds []Command
	for _, tr := range t.all {
		cmds = tr.appendCommands(cmds)
	}

	return cmds
}
