package record

import (
	"fmt"
	"strings"
)

// Kind identifies the store a record belongs to.
//
// The declaration order is the order in which record access sets flush their
// trackers. The zero value is not a valid kind.
type Kind uint8

const (
	KindNode Kind = iota + 1
	KindProperty
	KindRelationship
	KindRelationshipGroup
	KindPropertyKeyToken
	KindRelationshipTypeToken
	KindLabelToken
)

// KindCount is the number of record kinds.
const KindCount = 7

var kindNames = [KindCount + 1]string{
	"",
	"node",
	"property",
	"relationship",
	"relationship_group",
	"property_key_token",
	"relationship_type_token",
	"label_token",
}

// Short names accepted by [ParseKind] in addition to the canonical ones.
var kindAliases = map[string]Kind{
	"rel":   KindRelationship,
	"group": KindRelationshipGroup,
	"prop":  KindProperty,
	"key":   KindPropertyKeyToken,
	"type":  KindRelationshipTypeToken,
	"label": KindLabelToken,
}

// Kinds returns all record kinds in flush order.
func Kinds() []Kind {
	return []Kind{
		KindNode,
		KindProperty,
		KindRelationship,
		KindRelationshipGroup,
		KindPropertyKeyToken,
		KindRelationshipTypeToken,
		KindLabelToken,
	}
}

// Valid reports whether k is one of [Kinds].
func (k Kind) Valid() bool {
	return k >= KindNode && k <= KindLabelToken
}

// Index returns the zero-based position of k in [Kinds].
// It panics if k is not valid.
func (k Kind) Index() int {
	if !k.Valid() {
		panic(fmt.Sprintf("record: invalid kind %d", uint8(k)))
	}

	return int(k) - 1
}

// String returns the canonical snake_case name of the kind.
// The name is stable: stores and metrics use it on disk and as label value.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}

	return kindNames[k]
}

// ParseKind parses a canonical kind name or one of its short aliases.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))

	for k := KindNode; k <= KindLabelToken; k++ {
		if kindNames[k] == name {
			return k, nil
		}
	}

	if k, ok := kindAliases[name]; ok {
		return k, nil
	}

	return 0, fmt.Errorf("%q: %w", s, ErrUnknownKind)
}
