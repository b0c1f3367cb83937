package engine

import "textweave/internal/salm"

// updateSALM maintains the two SALM spine memberships of a newly inserted
// node n, per spec.md §4.3. n is siblings[k] among parent's LeftChildren or
// RightChildren (whichever side isLeftChild selects), which by this point
// already has n spliced in.
//
// Left side: the spine tracks leftmost descendants, and the leftmost
// descendant of any node is reached by repeatedly following its *first*
// (lowest-id) left child — so the node that can extend or sever that spine
// is the one landing at index 0.
//
// Right side is the mirror image: the rightmost descendant is reached by
// repeatedly following the *last* (highest-id) right child, so the pivotal
// position is the last index, not index 0.
func updateSALM(parent, n *Node, isLeftChild bool, k int) {
	if isLeftChild {
		total := len(parent.LeftChildren)
		if k == 0 {
			if total >= 2 {
				salm.Split(parent.leftSpine)
			}
			n.leftSpine = salm.Append(parent.leftSpine, n)
		} else {
			n.leftSpine = salm.Create(n)
		}
		n.rightSpine = salm.Create(n)
		return
	}

	total := len(parent.RightChildren)
	if k == total-1 {
		if total >= 2 {
			salm.Split(parent.rightSpine)
		}
		n.rightSpine = salm.Append(parent.rightSpine, n)
	} else {
		n.rightSpine = salm.Create(n)
	}
	n.leftSpine = salm.Create(n)
}
