package record

// Property is a property record holding a single key/value pair.
// Properties of one entity form a doubly linked chain.
type Property struct {
	Header

	KeyID    uint32
	Value    Value
	PrevProp int64
	NextProp int64
}

// NewProperty returns an in-use property with no value and no neighbours.
func NewProperty(id int64) *Property {
	return &Property{
		Header:   Header{ID: id, InUse: true},
		PrevProp: NoID,
		NextProp: NoID,
	}
}

// Kind returns [KindProperty].
func (*Property) Kind() Kind { return KindProperty }

// Clone returns a copy. Values are immutable so the copy is deep.
func (p *Property) Clone() *Property {
	c := *p

	return &c
}
