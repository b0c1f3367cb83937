package engine

import (
	"fmt"

	"textweave/internal/id"
	"textweave/internal/salm"
)

// Directory owns every node ever created for one replica, keyed by id
// (spec.md §3.2: "Ownership of a node is held by the replica's nodesById
// directory; all tree pointers are non-owning references into that
// directory."). It also holds the interleaving tree's root sentinel, which
// is the anchor of both SALMs, and the balanced index's current root, which
// AVL rotations can move away from the sentinel.
type Directory struct {
	root  *Node
	bRoot *Node
	byID  map[id.ID]*Node
}

// NewDirectory returns an empty Directory containing only the root
// sentinel node (value unset, id.Root, never present).
func NewDirectory() *Directory {
	root := &Node{ID: id.Root}
	root.leftSpine = salm.Create(root)
	root.rightSpine = salm.Create(root)
	d := &Directory{
		root:  root,
		bRoot: root,
		byID:  map[id.ID]*Node{id.Root: root},
	}
	return d
}

// Root returns the root of the balanced index, the starting point for
// IndexToNode and InorderPresent.
func (d *Directory) Root() *Node { return d.bRoot }

// Lookup returns the node with the given id, if any.
func (d *Directory) Lookup(nid id.ID) (*Node, bool) {
	n, ok := d.byID[nid]
	return n, ok
}

// Len returns the number of present (non-tombstoned) characters, i.e. the
// replicated text's length. O(1) via the root's augmented count.
func (d *Directory) Len() int {
	return d.bRoot.BCount
}

// NodeCount returns the total number of character nodes ever created,
// including tombstones but excluding the root sentinel. Used by Stats.
func (d *Directory) NodeCount() int {
	return len(d.byID) - 1
}

// Anchor computes the interleaving-tree insertion position for a local
// edit at cursor index i, per spec.md §4.1's insertion-anchor rule: the new
// node becomes a right child of the node at index i-1 if that node has no
// right children yet, otherwise a left child of that node's canonical
// inorder successor.
func (d *Directory) Anchor(i int) (parentID id.ID, isLeftChild bool, err error) {
	var left *Node
	if i == 0 {
		left = d.root
	} else {
		left, err = IndexToNode(d.bRoot, i-1)
		if err != nil {
			return id.Root, false, err
		}
	}
	if !left.HasRightChild() {
		return left.ID, false, nil
	}
	succ := NextNode(left)
	if succ == nil {
		return id.Root, false, fmt.Errorf("%w: no successor for anchor at index %d", ErrInvariantViolation, i)
	}
	return succ.ID, true, nil
}

// Insert creates a new node under parentID on the given side and splices
// it into the interleaving tree, the balanced index, and both SALMs,
// atomically with respect to any observer (spec.md §3.2). This is the
// single entry point both local edits (after the caller has minted an id
// via the runtime) and remote operation messages funnel through.
func (d *Directory) Insert(nid id.ID, parentID id.ID, isLeftChild bool, value rune) (*Node, error) {
	parent, ok := d.byID[parentID]
	if !ok {
		return nil, fmt.Errorf("%w: parent %q", ErrUnknownID, parentID)
	}
	if _, exists := d.byID[nid]; exists {
		return nil, fmt.Errorf("%w: duplicate node id %q", ErrInvariantViolation, nid)
	}

	n := &Node{
		ID:          nid,
		Value:       value,
		ParentID:    parentID,
		IsLeftChild: isLeftChild,
		IsPresent:   true,
		Parent:      parent,
	}

	var k int
	if isLeftChild {
		k = spliceSorted(&parent.LeftChildren, n)
	} else {
		k = spliceSorted(&parent.RightChildren, n)
	}

	pred, succ, err := neighbors(parent, isLeftChild, k)
	if err != nil {
		return nil, err
	}
	if err := attachToIndex(n, pred, succ); err != nil {
		return nil, err
	}
	for d.bRoot.BParent != nil {
		d.bRoot = d.bRoot.BParent
	}
	updateSALM(parent, n, isLeftChild, k)

	d.byID[nid] = n
	return n, nil
}

// Delete tombstones the node with the given id. Idempotent: deleting an
// already-tombstoned node is a silent no-op, per spec.md §3.2 and §7.
func (d *Directory) Delete(nid id.ID) error {
	n, ok := d.byID[nid]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownID, nid)
	}
	if !n.IsPresent {
		return nil
	}
	n.IsPresent = false
	for cur := n; cur != nil; cur = cur.BParent {
		cur.BCount--
	}
	return nil
}

// spliceSorted inserts n into *children at the position its id sorts to,
// ascending, and returns that position. Linear scan, grounded directly on
// the teacher's insertLeftChild/insertRightChild: spec.md §4.1 explicitly
// allows this ("binary-searchable; linear scan acceptable — siblings are
// bounded by concurrency width c").
func spliceSorted(children *[]*Node, n *Node) int {
	s := *children
	idx := 0
	for idx < len(s) && s[idx].ID.Less(n.ID) {
		idx++
	}
	out := make([]*Node, len(s)+1)
	copy(out, s[:idx])
	out[idx] = n
	copy(out[idx+1:], s[idx:])
	*children = out
	return idx
}

// neighbors computes the immediate predecessor or successor of a new
// sibling in canonical order, counting tombstones, per spec.md §4.2 step 2.
func neighbors(parent *Node, isLeftChild bool, k int) (pred, succ *Node, err error) {
	if isLeftChild {
		total := len(parent.LeftChildren)
		if k == total-1 {
			succ = parent
		} else {
			succ = leftmost(parent.LeftChildren[k+1])
		}
		return nil, succ, nil
	}
	if k == 0 {
		pred = parent
	} else {
		pred = rightmost(parent.RightChildren[k-1])
	}
	return pred, nil, nil
}
