package record

// Token is the shared shape of the three token record kinds.
type Token struct {
	Header

	Internal bool
	Name     string
}

// PropertyKeyToken names a property key.
type PropertyKeyToken struct {
	Token

	// PropertyCount is the number of properties using this key.
	PropertyCount int32
}

// RelationshipTypeToken names a relationship type.
type RelationshipTypeToken struct {
	Token
}

// LabelToken names a node label.
type LabelToken struct {
	Token
}

// NewPropertyKeyToken returns an in-use, unnamed property key token.
func NewPropertyKeyToken(id int64) *PropertyKeyToken {
	return &PropertyKeyToken{Token: Token{Header: Header{ID: id, InUse: true}}}
}

// NewRelationshipTypeToken returns an in-use, unnamed relationship type token.
func NewRelationshipTypeToken(id int64) *RelationshipTypeToken {
	return &RelationshipTypeToken{Token: Token{Header: Header{ID: id, InUse: true}}}
}

// NewLabelToken returns an in-use, unnamed label token.
func NewLabelToken(id int64) *LabelToken {
	return &LabelToken{Token: Token{Header: Header{ID: id, InUse: true}}}
}

// Kind returns [KindPropertyKeyToken].
func (*PropertyKeyToken) Kind() Kind { return KindPropertyKeyToken }

// Kind returns [KindRelationshipTypeToken].
func (*RelationshipTypeToken) Kind() Kind { return KindRelationshipTypeToken }

// Kind returns [KindLabelToken].
func (*LabelToken) Kind() Kind { return KindLabelToken }

// Clone returns a copy.
func (t *PropertyKeyToken) Clone() *PropertyKeyToken {
	c := *t

	return &c
}

// Clone returns a copy.
func (t *RelationshipTypeToken) Clone() *RelationshipTypeToken {
	c := *t

	return &c
}

// Clone returns a copy.
func (t *LabelToken) Clone() *LabelToken {
	c := *t

	return &c
}
