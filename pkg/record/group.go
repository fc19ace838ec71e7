package record

// RelationshipGroup groups the relationships of one type of a dense node.
type RelationshipGroup struct {
	Header

	Type       uint32
	Next       int64
	FirstOut   int64
	FirstIn    int64
	FirstLoop  int64
	OwningNode int64
}

// NewRelationshipGroup returns an in-use group with every reference unset.
func NewRelationshipGroup(id int64) *RelationshipGroup {
	return &RelationshipGroup{
		Header:     Header{ID: id, InUse: true},
		Next:       NoID,
		FirstOut:   NoID,
		FirstIn:    NoID,
		FirstLoop:  NoID,
		OwningNode: NoID,
	}
}

// Kind returns [KindRelationshipGroup].
func (*RelationshipGroup) Kind() Kind { return KindRelationshipGroup }

// Clone returns a copy.
func (g *RelationshipGroup) Clone() *RelationshipGroup {
	c := *g

	return &c
}
