package record

import "fmt"

// Encode encodes rec with the format of its kind into a new buffer.
func Encode(rec Record) ([]byte, error) {
	switch r := rec.(type) {
	case *Node:
		return encodeWith(NodeFormat, r)
	case *Property:
		return encodeWith(PropertyFormat, r)
	case *Relationship:
		return encodeWith(RelationshipFormat, r)
	case *RelationshipGroup:
		return encodeWith(RelationshipGroupFormat, r)
	case *PropertyKeyToken:
		return encodeWith(PropertyKeyTokenFormat, r)
	case *RelationshipTypeToken:
		return encodeWith(RelationshipTypeTokenFormat, r)
	case *LabelToken:
		return encodeWith(LabelTokenFormat, r)
	default:
		return nil, fmt.Errorf("%T: %w", rec, ErrUnknownKind)
	}
}

// Validate reports whether rec fits the fixed layout of its kind. It
// returns the error [Encode] would return, wrapping [ErrInvalid] for
// records that exceed a layout limit.
func Validate(rec Record) error {
	_, err := Encode(rec)

	return err
}

// Decode decodes buf, as produced by [Encode], into the record of kind at id.
func Decode(kind Kind, id int64, buf []byte) (Record, error) {
	switch kind {
	case KindNode:
		return decodeWith(NodeFormat, id, buf)
	case KindProperty:
		return decodeWith(PropertyFormat, id, buf)
	case KindRelationship:
		return decodeWith(RelationshipFormat, id, buf)
	case KindRelationshipGroup:
		return decodeWith(RelationshipGroupFormat, id, buf)
	case KindPropertyKeyToken:
		return decodeWith(PropertyKeyTokenFormat, id, buf)
	case KindRelationshipTypeToken:
		return decodeWith(RelationshipTypeTokenFormat, id, buf)
	case KindLabelToken:
		return decodeWith(LabelTokenFormat, id, buf)
	default:
		return nil, fmt.Errorf("%s: %w", kind, ErrUnknownKind)
	}
}

func encodeWith[R Record](f Format[R], rec R) ([]byte, error) {
	buf := make([]byte, f.Size())

	err := f.Encode(buf, rec)
	if err != nil {
		return nil, err
	}

	return buf, nil
}

func decodeWith[R Record](f Format[R], id int64, buf []byte) (Record, error) {
	if len(buf) != f.Size() {
		return nil, fmt.Errorf("%s %d: %d bytes, want %d: %w", f.Kind(), id, len(buf), f.Size(), ErrMalformed)
	}

	rec, err := f.Decode(id, buf)
	if err != nil {
		return nil, err
	}

	return rec, nil
}
