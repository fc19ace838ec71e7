package record

// Relationship is a relationship record.
//
// A relationship sits in two doubly linked chains, one per endpoint. The
// FirstInFirstChain / FirstInSecondChain flags mark it as the head of the
// respective chain.
type Relationship struct {
	Header

	Type       uint32
	FirstNode  int64
	SecondNode int64

	FirstPrevRel  int64
	FirstNextRel  int64
	SecondPrevRel int64
	SecondNextRel int64

	FirstInFirstChain  bool
	FirstInSecondChain bool

	NextProp int64
}

// NewRelationship returns an in-use relationship with every reference unset.
func NewRelationship(id int64) *Relationship {
	return &Relationship{
		Header:        Header{ID: id, InUse: true},
		FirstNode:     NoID,
		SecondNode:    NoID,
		FirstPrevRel:  NoID,
		FirstNextRel:  NoID,
		SecondPrevRel: NoID,
		SecondNextRel: NoID,
		NextProp:      NoID,
	}
}

// Kind returns [KindRelationship].
func (*Relationship) Kind() Kind { return KindRelationship }

// Clone returns a copy.
func (r *Relationship) Clone() *Relationship {
	c := *r

	return &c
}

// Link sets type and endpoints.
func (r *Relationship) Link(relType uint32, firstNode, secondNode int64) {
	r.Type = relType
	r.FirstNode = firstNode
	r.SecondNode = secondNode
}
