package record

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Format encodes records of one kind into fixed-size byte slots.
type Format[R Record] interface {
	// Kind returns the kind of records handled by the format.
	Kind() Kind

	// Size returns the encoded size in bytes. It never changes.
	Size() int

	// Encode writes rec into dst, which must be exactly Size bytes.
	// Returns [ErrInvalid] if rec does not fit the layout.
	Encode(dst []byte, rec R) error

	// Decode reads the record stored at id from src (Size bytes).
	// Returns [ErrMalformed] if src is not a valid encoding.
	Decode(id int64, src []byte) (R, error)
}

// Layout formats for each kind.
var (
	NodeFormat                  Format[*Node]                  = nodeFormat{}
	RelationshipFormat          Format[*Relationship]          = relationshipFormat{}
	RelationshipGroupFormat     Format[*RelationshipGroup]     = groupFormat{}
	PropertyFormat              Format[*Property]              = propertyFormat{}
	PropertyKeyTokenFormat      Format[*PropertyKeyToken]      = propertyKeyTokenFormat{}
	RelationshipTypeTokenFormat Format[*RelationshipTypeToken] = relationshipTypeTokenFormat{}
	LabelTokenFormat            Format[*LabelToken]            = labelTokenFormat{}
)

// Flag bits shared by all layouts. Byte 0 of every layout holds the flags.
const (
	flagInUse  byte = 1 << 0
	flagBit1   byte = 1 << 1
	flagBit2   byte = 1 << 2
	knownFlags      = flagInUse | flagBit1 | flagBit2
)

// Encoded sizes.
const (
	nodeSize         = 44
	relationshipSize = 64
	groupSize        = 48
	propertySize     = 56
	tokenSize        = 72
)

var le = binary.LittleEndian

func putID(dst []byte, id int64) {
	le.PutUint64(dst, uint64(id))
}

func getID(src []byte) int64 {
	return int64(le.Uint64(src))
}

func flags(inUse bool, bit1 bool, bit2 bool) byte {
	var f byte
	if inUse {
		f |= flagInUse
	}

	if bit1 {
		f |= flagBit1
	}

	if bit2 {
		f |= flagBit2
	}

	return f
}

func checkFlags(k Kind, id int64, f byte) error {
	if f&^knownFlags != 0 {
		return fmt.Errorf("%s %d: unknown flags 0x%02x: %w", k, id, f, ErrMalformed)
	}

	return nil
}

func checkSize(k Kind, buf []byte, want int) {
	if len(buf) != want {
		panic(fmt.Sprintf("record: %s buffer is %d bytes, want %d", k, len(buf), want))
	}
}

// --- node ---
//
// [0] flags (inUse, dense) [1] label count [2:4] reserved
// [4:12] next rel [12:20] next prop [20:44] 6 x uint32 labels

type nodeFormat struct{}

func (nodeFormat) Kind() Kind { return KindNode }
func (nodeFormat) Size() int  { return nodeSize }

func (nodeFormat) Encode(dst []byte, n *Node) error {
	checkSize(KindNode, dst, nodeSize)

	if len(n.Labels) > MaxInlineLabels {
		return fmt.Errorf("node %d: %d labels exceed inline limit %d: %w",
			n.ID, len(n.Labels), MaxInlineLabels, ErrInvalid)
	}

	clear(dst)
	dst[0] = flags(n.InUse, n.Dense, false)
	dst[1] = byte(len(n.Labels))
	putID(dst[4:], n.NextRel)
	putID(dst[12:], n.NextProp)

	for i, label := range n.Labels {
		le.PutUint32(dst[20+4*i:], label)
	}

	return nil
}

func (nodeFormat) Decode(id int64, src []byte) (*Node, error) {
	checkSize(KindNode, src, nodeSize)

	err := checkFlags(KindNode, id, src[0])
	if err != nil {
		return nil, err
	}

	count := int(src[1])
	if count > MaxInlineLabels {
		return nil, fmt.Errorf("node %d: label count %d: %w", id, count, ErrMalformed)
	}

	n := &Node{
		Header:   Header{ID: id, InUse: src[0]&flagInUse != 0},
		Dense:    src[0]&flagBit1 != 0,
		NextRel:  getID(src[4:]),
		NextProp: getID(src[12:]),
	}

	if count > 0 {
		n.Labels = make([]uint32, count)
		for i := range count {
			n.Labels[i] = le.Uint32(src[20+4*i:])
		}
	}

	return n, nil
}

// --- relationship ---
//
// [0] flags (inUse, firstInFirstChain, firstInSecondChain) [1:4] reserved
// [4:8] type [8:16] first node [16:24] second node
// [24:32] first prev [32:40] first next [40:48] second prev [48:56] second next
// [56:64] next prop

type relationshipFormat struct{}

func (relationshipFormat) Kind() Kind { return KindRelationship }
func (relationshipFormat) Size() int  { return relationshipSize }

func (relationshipFormat) Encode(dst []byte, r *Relationship) error {
	checkSize(KindRelationship, dst, relationshipSize)

	clear(dst)
	dst[0] = flags(r.InUse, r.FirstInFirstChain, r.FirstInSecondChain)
	le.PutUint32(dst[4:], r.Type)
	putID(dst[8:], r.FirstNode)
	putID(dst[16:], r.SecondNode)
	putID(dst[24:], r.FirstPrevRel)
	putID(dst[32:], r.FirstNextRel)
	putID(dst[40:], r.SecondPrevRel)
	putID(dst[48:], r.SecondNextRel)
	putID(dst[56:], r.NextProp)

	return nil
}

func (relationshipFormat) Decode(id int64, src []byte) (*Relationship, error) {
	checkSize(KindRelationship, src, relationshipSize)

	err := checkFlags(KindRelationship, id, src[0])
	if err != nil {
		return nil, err
	}

	return &Relationship{
		Header:             Header{ID: id, InUse: src[0]&flagInUse != 0},
		FirstInFirstChain:  src[0]&flagBit1 != 0,
		FirstInSecondChain: src[0]&flagBit2 != 0,
		Type:               le.Uint32(src[4:]),
		FirstNode:          getID(src[8:]),
		SecondNode:         getID(src[16:]),
		FirstPrevRel:       getID(src[24:]),
		FirstNextRel:       getID(src[32:]),
		SecondPrevRel:      getID(src[40:]),
		SecondNextRel:      getID(src[48:]),
		NextProp:           getID(src[56:]),
	}, nil
}

// --- relationship group ---
//
// [0] flags (inUse) [1:4] reserved [4:8] type [8:16] next
// [16:24] first out [24:32] first in [32:40] first loop [40:48] owning node

type groupFormat struct{}

func (groupFormat) Kind() Kind { return KindRelationshipGroup }
func (groupFormat) Size() int  { return groupSize }

func (groupFormat) Encode(dst []byte, g *RelationshipGroup) error {
	checkSize(KindRelationshipGroup, dst, groupSize)

	clear(dst)
	dst[0] = flags(g.InUse, false, false)
	le.PutUint32(dst[4:], g.Type)
	putID(dst[8:], g.Next)
	putID(dst[16:], g.FirstOut)
	putID(dst[24:], g.FirstIn)
	putID(dst[32:], g.FirstLoop)
	putID(dst[40:], g.OwningNode)

	return nil
}

func (groupFormat) Decode(id int64, src []byte) (*RelationshipGroup, error) {
	checkSize(KindRelationshipGroup, src, groupSize)

	if src[0]&^flagInUse != 0 {
		return nil, fmt.Errorf("relationship_group %d: unknown flags 0x%02x: %w", id, src[0], ErrMalformed)
	}

	return &RelationshipGroup{
		Header:     Header{ID: id, InUse: src[0]&flagInUse != 0},
		Type:       le.Uint32(src[4:]),
		Next:       getID(src[8:]),
		FirstOut:   getID(src[16:]),
		FirstIn:    getID(src[24:]),
		FirstLoop:  getID(src[32:]),
		OwningNode: getID(src[40:]),
	}, nil
}

// --- property ---
//
// [0] flags (inUse) [1] value type [2] string length [3] reserved
// [4:8] key id [8:16] prev prop [16:24] next prop [24:56] value payload

type propertyFormat struct{}

func (propertyFormat) Kind() Kind { return KindProperty }
func (propertyFormat) Size() int  { return propertySize }

func (propertyFormat) Encode(dst []byte, p *Property) error {
	checkSize(KindProperty, dst, propertySize)

	clear(dst)
	dst[0] = flags(p.InUse, false, false)
	dst[1] = byte(p.Value.typ)
	le.PutUint32(dst[4:], p.KeyID)
	putID(dst[8:], p.PrevProp)
	putID(dst[16:], p.NextProp)

	switch p.Value.typ {
	case ValueNone:
	case ValueInt, ValueFloat, ValueBool:
		le.PutUint64(dst[24:], p.Value.bits)
	case ValueString:
		if len(p.Value.str) > MaxInlineValueBytes {
			return fmt.Errorf("property %d: string value of %d bytes exceeds inline limit %d: %w",
				p.ID, len(p.Value.str), MaxInlineValueBytes, ErrInvalid)
		}

		dst[2] = byte(len(p.Value.str))
		copy(dst[24:], p.Value.str)
	default:
		return fmt.Errorf("property %d: value type %s: %w", p.ID, p.Value.typ, ErrInvalid)
	}

	return nil
}

func (propertyFormat) Decode(id int64, src []byte) (*Property, error) {
	checkSize(KindProperty, src, propertySize)

	if src[0]&^flagInUse != 0 {
		return nil, fmt.Errorf("property %d: unknown flags 0x%02x: %w", id, src[0], ErrMalformed)
	}

	p := &Property{
		Header:   Header{ID: id, InUse: src[0]&flagInUse != 0},
		KeyID:    le.Uint32(src[4:]),
		PrevProp: getID(src[8:]),
		NextProp: getID(src[16:]),
	}

	typ := ValueType(src[1])

	switch typ {
	case ValueNone:
	case ValueInt, ValueFloat, ValueBool:
		p.Value = Value{typ: typ, bits: le.Uint64(src[24:])}
		if typ == ValueBool && p.Value.bits > 1 {
			return nil, fmt.Errorf("property %d: bool payload %d: %w", id, p.Value.bits, ErrMalformed)
		}
	case ValueString:
		n := int(src[2])
		if n > MaxInlineValueBytes {
			return nil, fmt.Errorf("property %d: string length %d: %w", id, n, ErrMalformed)
		}

		p.Value = StringValue(string(src[24 : 24+n]))
	default:
		return nil, fmt.Errorf("property %d: value type %d: %w", id, uint8(typ), ErrMalformed)
	}

	return p, nil
}

// --- tokens ---
//
// [0] flags (inUse, internal) [1] name length [2:4] reserved
// [4:8] property count (property key tokens only) [8:72] name

func encodeToken(k Kind, dst []byte, t *Token, count int32) error {
	checkSize(k, dst, tokenSize)

	if len(t.Name) > MaxTokenNameBytes {
		return fmt.Errorf("%s %d: name of %d bytes exceeds limit %d: %w",
			k, t.ID, len(t.Name), MaxTokenNameBytes, ErrInvalid)
	}

	clear(dst)
	dst[0] = flags(t.InUse, t.Internal, false)
	dst[1] = byte(len(t.Name))
	le.PutUint32(dst[4:], uint32(count))
	copy(dst[8:], t.Name)

	return nil
}

func decodeToken(k Kind, id int64, src []byte) (Token, int32, error) {
	checkSize(k, src, tokenSize)

	if src[0]&^(flagInUse|flagBit1) != 0 {
		return Token{}, 0, fmt.Errorf("%s %d: unknown flags 0x%02x: %w", k, id, src[0], ErrMalformed)
	}

	n := int(src[1])
	if n > MaxTokenNameBytes {
		return Token{}, 0, fmt.Errorf("%s %d: name length %d: %w", k, id, n, ErrMalformed)
	}

	count := le.Uint32(src[4:])
	if count > math.MaxInt32 {
		return Token{}, 0, fmt.Errorf("%s %d: property count %d: %w", k, id, count, ErrMalformed)
	}

	t := Token{
		Header:   Header{ID: id, InUse: src[0]&flagInUse != 0},
		Internal: src[0]&flagBit1 != 0,
		Name:     string(src[8 : 8+n]),
	}

	return t, int32(count), nil
}

type propertyKeyTokenFormat struct{}

func (propertyKeyTokenFormat) Kind() Kind { return KindPropertyKeyToken }
func (propertyKeyTokenFormat) Size() int  { return tokenSize }

func (propertyKeyTokenFormat) Encode(dst []byte, t *PropertyKeyToken) error {
	if t.PropertyCount < 0 {
		return fmt.Errorf("property_key_token %d: negative property count %d: %w", t.ID, t.PropertyCount, ErrInvalid)
	}

	return encodeToken(KindPropertyKeyToken, dst, &t.Token, t.PropertyCount)
}

func (propertyKeyTokenFormat) Decode(id int64, src []byte) (*PropertyKeyToken, error) {
	t, count, err := decodeToken(KindPropertyKeyToken, id, src)
	if err != nil {
		return nil, err
	}

	return &PropertyKeyToken{Token: t, PropertyCount: count}, nil
}

type relationshipTypeTokenFormat struct{}

func (relationshipTypeTokenFormat) Kind() Kind { return KindRelationshipTypeToken }
func (relationshipTypeTokenFormat) Size() int  { return tokenSize }

func (relationshipTypeTokenFormat) Encode(dst []byte, t *RelationshipTypeToken) error {
	return encodeToken(KindRelationshipTypeToken, dst, &t.Token, 0)
}

func (relationshipTypeTokenFormat) Decode(id int64, src []byte) (*RelationshipTypeToken, error) {
	t, _, err := decodeToken(KindRelationshipTypeToken, id, src)
	if err != nil {
		return nil, err
	}

	return &RelationshipTypeToken{Token: t}, nil
}

type labelTokenFormat struct{}

func (labelTokenFormat) Kind() Kind { return KindLabelToken }
func (labelTokenFormat) Size() int  { return tokenSize }

func (labelTokenFormat) Encode(dst []byte, t *LabelToken) error {
	return encodeToken(KindLabelToken, dst, &t.Token, 0)
}

func (labelTokenFormat) Decode(id int64, src []byte) (*LabelToken, error) {
	t, _, err := decodeToken(KindLabelToken, id, src)
	if err != nil {
		return nil, err
	}

	return &LabelToken{Token: t}, nil
}
