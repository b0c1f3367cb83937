// Package engine holds the two tightly coupled data structures named in
// spec.md §1 as the core of this system: the interleaving tree (the
// canonical CRDT structure, spec.md §4.1) and the balanced index that sits
// over the same nodes (an augmented AVL tree, spec.md §4.2). They are kept
// in one package — rather than split the way the teacher's crdt/broker/
// appserver layout splits concerns into separate modules — because spec.md
// §9's design notes call for "a single node struct embedding all four link
// sets" and because step 3 of §4.2's insertion algorithm walks the
// interleaving tree to attach into the balanced index: the two structures
// cannot be built without reaching into each other's fields.
package engine

import (
	"textweave/internal/id"
	"textweave/internal/salm"
)

// Node is a single character node, grounded on the teacher's crdt/node.go
// Node type (nodeID, value, leftChildren, rightChildren), generalized with
// the balanced-index and SALM link sets spec.md §3.1 requires of every node.
//
// All pointer fields here are non-owning navigation links; the Directory's
// byID map is the sole owner of every Node (spec.md §3.2).
type Node struct {
	ID       id.ID
	Value    rune
	ParentID id.ID

	IsLeftChild bool
	IsPresent   bool

	// Parent, LeftChildren and RightChildren form the interleaving tree
	// (component A). LeftChildren and RightChildren are kept sorted
	// ascending by ID, mirroring node.go's insertLeftChild/insertRightChild.
	Parent        *Node
	LeftChildren  []*Node
	RightChildren []*Node

	// BParent, BLeft, BRight, BF and BCount form the balanced index
	// (component B): an AVL tree over the same node set, augmented with a
	// present-node subtree count.
	BParent *Node
	BLeft   *Node
	BRight  *Node
	BF      int8
	BCount  int

	// bHeight is a height cache used only to compute BF and to decide when
	// to rotate; it isn't part of the node shape spec.md's data model
	// names, but maintaining it alongside BF is what lets recalc derive
	// BF correctly in O(1) per node instead of re-deriving heights from
	// scratch on every query.
	bHeight int

	// leftSpine and rightSpine are this node's memberships in the two SALM
	// lists (component C): leftSpine tracks the list whose end is this
	// node's leftmost descendant, rightSpine the list whose end is its
	// rightmost descendant.
	leftSpine  *salm.Node[*Node]
	rightSpine *salm.Node[*Node]
}

// HasRightChild reports whether n has at least one right child in the
// interleaving tree, the test spec.md §4.1's insertion anchor rule turns on.
func (n *Node) HasRightChild() bool {
	return len(n.RightChildren) > 0
}

// leftmost returns the leftmost descendant of n in the interleaving tree,
// spec.md §4.3's SALM-left(n), in O(log n).
func leftmost(n *Node) *Node {
	return salm.GetEnd(n.leftSpine).Value
}

// rightmost returns the rightmost descendant of n in the interleaving tree,
// spec.md §4.3's SALM-right(n), in O(log n).
func rightmost(n *Node) *Node {
	return salm.GetEnd(n.rightSpine).Value
}
