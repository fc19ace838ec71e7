package recordaccess_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/calvinalkan/graphrec/pkg/idgen"
	"github.com/calvinalkan/graphrec/pkg/record"
	"github.com/calvinalkan/graphrec/pkg/recordaccess"
	"github.com/calvinalkan/graphrec/pkg/recordstore"
)

const testCapacity = 64

// fixture wires in-memory stores of every kind to an in-memory id factory.
type fixture struct {
	nodes                  *recordstore.Memory[*record.Node]
	properties             *recordstore.Memory[*record.Property]
	relationships          *recordstore.Memory[*record.Relationship]
	relationshipGroups     *recordstore.Memory[*record.RelationshipGroup]
	propertyKeyTokens      *recordstore.Memory[*record.PropertyKeyToken]
	relationshipTypeTokens *recordstore.Memory[*record.RelationshipTypeToken]
	labelTokens            *recordstore.Memory[*record.LabelToken]

	ids *idgen.Factory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		nodes:                  recordstore.NewMemory(record.NodeFormat, testCapacity),
		properties:             recordstore.NewMemory(record.PropertyFormat, testCapacity),
		relationships:          recordstore.NewMemory(record.RelationshipFormat, testCapacity),
		relationshipGroups:     recordstore.NewMemory(record.RelationshipGroupFormat, testCapacity),
		propertyKeyTokens:      recordstore.NewMemory(record.PropertyKeyTokenFormat, testCapacity),
		relationshipTypeTokens: recordstore.NewMemory(record.RelationshipTypeTokenFormat, testCapacity),
		labelTokens:            recordstore.NewMemory(record.LabelTokenFormat, testCapacity),
		ids:                    idgen.NewFactory(testCapacity),
	}

	f.nodes.SetIDMarker(f.ids.Get(record.KindNode))
	f.properties.SetIDMarker(f.ids.Get(record.KindProperty))
	f.relationships.SetIDMarker(f.ids.Get(record.KindRelationship))
	f.relationshipGroups.SetIDMarker(f.ids.Get(record.KindRelationshipGroup))
	f.propertyKeyTokens.SetIDMarker(f.ids.Get(record.KindPropertyKeyToken))
	f.relationshipTypeTokens.SetIDMarker(f.ids.Get(record.KindRelationshipTypeToken))
	f.labelTokens.SetIDMarker(f.ids.Get(record.KindLabelToken))

	return f
}

func (f *fixture) stores() recordaccess.StoreSet {
	return recordaccess.StoreSet{
		Nodes:                  f.nodes,
		Properties:             f.properties,
		Relationships:          f.relationships,
		RelationshipGroups:     f.relationshipGroups,
		PropertyKeyTokens:      f.propertyKeyTokens,
		RelationshipTypeTokens: f.relationshipTypeTokens,
		LabelTokens:            f.labelTokens,
	}
}

func (f *fixture) direct() *recordaccess.Direct {
	return recordaccess.NewDirect(f.stores(), f.ids)
}

// eventLog collects store writes and reconciliations in the order they happen.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.events...)
}

type loggingStore[R record.Record] struct {
	inner recordaccess.Store[R]
	log   *eventLog
}

func (s loggingStore[R]) Load(id int64) (R, error) {
	return s.inner.Load(id)
}

func (s loggingStore[R]) Update(rec R) error {
	err := s.inner.Update(rec)
	if err == nil {
		s.log.add("update %s %d", rec.Kind(), rec.RecordID())
	}

	return err
}

func logged[R record.Record](inner recordaccess.Store[R], log *eventLog) recordaccess.Store[R] {
	return loggingStore[R]{inner: inner, log: log}
}

// loggingGenerators reports one reconciliation per kind to log.
type loggingGenerators struct {
	log *eventLog
}

type loggingReconciler struct {
	kind record.Kind
	log  *eventLog
}

func (r loggingReconciler) Kind() record.Kind { return r.kind }

func (r loggingReconciler) MarkHighestWrittenAtHighID() {
	r.log.add("reconcile %s", r.kind)
}

func (g loggingGenerators) Visit(fn func(idgen.Reconciler)) {
	for _, k := range record.Kinds() {
		fn(loggingReconciler{kind: k, log: g.log})
	}
}

func (f *fixture) loggedStores(log *eventLog) recordaccess.StoreSet {
	return recordaccess.StoreSet{
		Nodes:                  logged[*record.Node](f.nodes, log),
		Properties:             logged[*record.Property](f.properties, log),
		Relationships:          logged[*record.Relationship](f.relationships, log),
		RelationshipGroups:     logged[*record.RelationshipGroup](f.relationshipGroups, log),
		PropertyKeyTokens:      logged[*record.PropertyKeyToken](f.propertyKeyTokens, log),
		RelationshipTypeTokens: logged[*record.RelationshipTypeToken](f.relationshipTypeTokens, log),
		LabelTokens:            logged[*record.LabelToken](f.labelTokens, log),
	}
}

func nodeWithLabels(id int64, labels ...uint32) *record.Node {
	n := record.NewNode(id)
	for _, l := range labels {
		n.AddLabel(l)
	}

	return n
}
