// Package salm implements the Split-Append List Manager described in
// spec.md §4.3: an auxiliary AVL-based structure that tracks, for a set of
// disjoint "spines" of the interleaving tree, the leftmost/rightmost
// descendant of any node on a spine in O(log n).
//
// Each spine is represented as one AVL tree ordered purely by structural
// (append) position — there are no keys to compare, so Node is generic over
// the payload it carries. That mirrors the teacher's own split between a
// generic augmented tree (google-btree's BTreeG) and a domain-specific one;
// here the payload is always a *engine.Node character, but the algorithm
// itself has no business knowing that.
package salm

// Node is one element of a split-append list. Insertion order within a list
// is tracked purely by tree position (in-order traversal), never by
// comparing Values.
type Node[T any] struct {
	Value T

	parent, left, right *Node[T]
	height              int
}

// Create starts a new singleton list containing v.
func Create[T any](v T) *Node[T] {
	return &Node[T]{Value: v}
}

// GetEnd returns the last element of the list containing v, in O(log n).
func GetEnd[T any](v *Node[T]) *Node[T] {
	n := root(v)
	for n.right != nil {
		n = n.right
	}
	return n
}

// Append appends v after the last element of the list containing e. It
// returns the new node, which becomes the new end of that list.
func Append[T any](e *Node[T], v T) *Node[T] {
	nn := &Node[T]{Value: v}
	appendNode(root(e), nn)
	return nn
}

// Split splits the list containing v into [start, v] and (v, end]. v is
// detached from both halves during the split and then re-appended to the
// left half (or becomes a fresh singleton if the left half was empty),
// per spec.md §4.3 step 3. v's node identity is preserved so callers that
// hold a *Node[T] handle to v keep a valid handle after the split.
func Split[T any](v *Node[T]) {
	type frame struct {
		parent  *Node[T]
		wasLeft bool
	}
	var path []frame
	for n := v; n.parent != nil; {
		p := n.parent
		path = append(path, frame{parent: p, wasLeft: p.left == n})
		n = p
	}

	l, r := v.left, v.right
	if l != nil {
		l.parent = nil
	}
	if r != nil {
		r.parent = nil
	}

	for _, f := range path {
		p := f.parent
		if f.wasLeft {
			pr := p.right
			if pr != nil {
				pr.parent = nil
			}
			p.left, p.right = nil, nil
			r = join(r, p, pr)
		} else {
			pl := p.left
			if pl != nil {
				pl.parent = nil
			}
			p.left, p.right = nil, nil
			l = join(pl, p, l)
		}
	}

	v.left, v.right, v.parent = nil, nil, nil
	v.height = 0
	appendNode(l, v)
}

// root climbs from n to the root of its list, in O(log n) amortized since
// lists are kept height-balanced.
func root[T any](n *Node[T]) *Node[T] {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

func height[T any](n *Node[T]) int {
	if n == nil {
		return -1
	}
	return n.height
}

func updateHeight[T any](n *Node[T]) {
	lh, rh := height(n.left), height(n.right)
	if lh > rh {
		n.height = lh + 1
	} else {
		n.height = rh + 1
	}
}

func balanceFactor[T any](n *Node[T]) int {
	return height(n.right) - height(n.left)
}

// rotateLeft and rotateRight operate on a live, parent-linked tree: they fix
// up the pivot's former parent's child slot, matching the Wikipedia AVL
// rotation definitions referenced by spec.md §4.2 step 5.
func rotateLeft[T any](x *Node[T]) *Node[T] {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent != nil {
		if x.parent.left == x {
			x.parent.left = y
		} else {
			x.parent.right = y
		}
	}
	y.left = x
	x.parent = y
	updateHeight(x)
	updateHeight(y)
	return y
}

func rotateRight[T any](x *Node[T]) *Node[T] {
	y := x.left
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	y.parent = x.parent
	if x.parent != nil {
		if x.parent.left == x {
			x.parent.left = y
		} else {
			x.parent.right = y
		}
	}
	y.right = x
	x.parent = y
	updateHeight(x)
	updateHeight(y)
	return y
}

// appendNode attaches the detached node v as the new rightmost element of
// the list rooted at lRoot (nil means an empty list), then rebalances from
// v upward.
func appendNode[T any](lRoot *Node[T], v *Node[T]) {
	v.left, v.right, v.height = nil, nil, 0
	if lRoot == nil {
		v.parent = nil
		return
	}
	end := lRoot
	for end.right != nil {
		end = end.right
	}
	end.right = v
	v.parent = end
	fixupInsert(v)
}

// fixupInsert walks from n up to the root, restoring the AVL invariant with
// the standard Left/Right/LeftRight/RightLeft rotations.
func fixupInsert[T any](n *Node[T]) {
	cur := n
	for cur.parent != nil {
		p := cur.parent
		updateHeight(p)
		switch {
		case balanceFactor(p) > 1:
			if balanceFactor(p.right) < 0 {
				rotateRight(p.right)
			}
			p = rotateLeft(p)
		case balanceFactor(p) < -1:
			if balanceFactor(p.left) > 0 {
				rotateLeft(p.left)
			}
			p = rotateRight(p)
		}
		cur = p
	}
}

// join merges two trees with mid as the single connecting node (not a key —
// mid is just a data element whose in-order position is "immediately after
// everything in l, immediately before everything in r"). It is the
// AVL join primitive spec.md §4.3 requires Split to be built on: it picks
// joinRightAVL, joinLeftAVL, or a direct attach depending on the height
// difference between l and r. The returned subtree's parent is nil; the
// caller is responsible for linking it into its new context.
func join[T any](l, mid, r *Node[T]) *Node[T] {
	switch {
	case height(l) > height(r)+1:
		return joinRightAVL(l, mid, r)
	case height(r) > height(l)+1:
		return joinLeftAVL(l, mid, r)
	default:
		attach(mid, l, r)
		return mid
	}
}

func attach[T any](mid, l, r *Node[T]) {
	mid.left, mid.right, mid.parent = l, r, nil
	if l != nil {
		l.parent = mid
	}
	if r != nil {
		r.parent = mid
	}
	updateHeight(mid)
}

// joinRightAVL handles the case where l is more than one level taller than
// r: it descends l's right spine until it finds a subtree of compatible
// height, grafts mid/r there, and rebalances on the way back up with
// local (non-parent-slot-fixing) rotations since the subtree is being
// rebuilt bottom-up rather than walked top-down.
func joinRightAVL[T any](l, mid, r *Node[T]) *Node[T] {
	if height(l.right) <= height(r)+1 {
		attach(mid, l.right, r)
		l.right = mid
		mid.parent = l
	} else {
		newRight := joinRightAVL(l.right, mid, r)
		l.right = newRight
		newRight.parent = l
	}
	updateHeight(l)
	result := l
	if balanceFactor(l) > 1 {
		if balanceFactor(l.right) < 0 {
			l.right = rotateRightLocal(l.right)
			l.right.parent = l
		}
		result = rotateLeftLocal(l)
	}
	result.parent = nil
	return result
}

// joinLeftAVL is the mirror image of joinRightAVL for the case where r is
// more than one level taller than l.
func joinLeftAVL[T any](l, mid, r *Node[T]) *Node[T] {
	if height(r.left) <= height(l)+1 {
		attach(mid, l, r.left)
		r.left = mid
		mid.parent = r
	} else {
		newLeft := joinLeftAVL(l, mid, r.left)
		r.left = newLeft
		newLeft.parent = r
	}
	updateHeight(r)
	result := r
	if balanceFactor(r) < -1 {
		if balanceFactor(r.left) > 0 {
			r.left = rotateLeftLocal(r.left)
			r.left.parent = r
		}
		result = rotateRightLocal(r)
	}
	result.parent = nil
	return result
}

// rotateLeftLocal and rotateRightLocal rotate a detached subtree being
// rebuilt by join: unlike rotateLeft/rotateRight they never touch a
// "parent's child slot", since the subtree isn't linked into any larger
// tree yet. The caller links the returned root itself.
func rotateLeftLocal[T any](x *Node[T]) *Node[T] {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.left = x
	x.parent = y
	updateHeight(x)
	updateHeight(y)
	y.parent = nil
	return y
}

func rotateRightLocal[T any](x *Node[T]) *Node[T] {
	y := x.left
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	y.right = x
	x.parent = y
	updateHeight(x)
	updateHeight(y)
	y.parent = nil
	return y
}
