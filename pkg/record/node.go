package record

import "slices"

// Node is a node record.
//
// Labels are kept sorted and unique by [Node.AddLabel]; callers assigning the
// slice directly are responsible for that themselves.
type Node struct {
	Header

	Dense    bool
	Labels   []uint32
	NextRel  int64
	NextProp int64
}

// NewNode returns an in-use node without labels, relationships or properties.
func NewNode(id int64) *Node {
	return &Node{
		Header:   Header{ID: id, InUse: true},
		NextRel:  NoID,
		NextProp: NoID,
	}
}

// Kind returns [KindNode].
func (*Node) Kind() Kind { return KindNode }

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	c := *n
	c.Labels = slices.Clone(n.Labels)

	return &c
}

// HasLabel reports whether the node carries label.
func (n *Node) HasLabel(label uint32) bool {
	_, found := slices.BinarySearch(n.Labels, label)

	return found
}

// AddLabel inserts label keeping Labels sorted. Returns false if already present.
func (n *Node) AddLabel(label uint32) bool {
	i, found := slices.BinarySearch(n.Labels, label)
	if found {
		return false
	}

	n.Labels = slices.Insert(n.Labels, i, label)

	return true
}

// RemoveLabel removes label. Returns false if it was not present.
func (n *Node) RemoveLabel(label uint32) bool {
	i, found := slices.BinarySearch(n.Labels, label)
	if !found {
		return false
	}

	n.Labels = slices.Delete(n.Labels, i, i+1)

	return true
}
