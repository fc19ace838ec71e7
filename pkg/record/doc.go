// Package record defines the fixed-shape records persisted by the graph record
// stores and their fixed-size binary layouts.
//
// There are seven record kinds, see [Kinds]. Every record embeds a [Header]
// carrying its id and in-use flag. Records never move between ids: the id of a
// record is its slot index in the store of its kind.
//
// # Layouts
//
// Each kind has a [Format] that encodes a record into exactly [Format.Size]
// bytes, little endian. Chain pointers use [NoID] (-1) as terminator. Inline
// payloads are bounded:
//   - node labels: [MaxInlineLabels]
//   - property values: [MaxInlineValueBytes]
//   - token names: [MaxTokenNameBytes]
//
// Records exceeding a bound fail to encode with [ErrInvalid].
package record
