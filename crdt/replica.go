package crdt

import (
	"fmt"

	"textweave/internal/engine"
	"textweave/internal/id"
)

// Runtime is the collaborator a Replica is built against, grounded on the
// teacher's own split between a CRDT's data structure and its transport: a
// Replica never dials a socket or picks an id itself, it asks its Runtime.
type Runtime interface {
	// GetUID returns a fresh, globally unique id for a node this replica is
	// about to insert locally.
	GetUID() id.ID
	// SendPrimitive broadcasts an encoded Operation to every other replica.
	SendPrimitive(data []byte)
}

// InsertEvent and DeleteEvent are delivered to a Replica's observers
// (spec.md §6) whenever a remote operation is applied. Local edits don't
// produce events: the caller of Insert/Delete already knows what it did.
type InsertEvent struct {
	Index int
	Value rune
	Meta  any
}

type DeleteEvent struct {
	Index         int
	DeletedValues []rune
	Meta          any
}

// Replica is the public façade over the engine's Directory (components
// A/B/C), wired to a Runtime for id generation and broadcast. It is the
// single type application code and the server package hold a reference to,
// mirroring the teacher's TextCRDT acting as the one door into crdt/node.go.
type Replica struct {
	dir      *engine.Directory
	rt       Runtime
	onInsert func(InsertEvent)
	onDelete func(DeleteEvent)
}

// NewReplica returns an empty Replica driven by rt.
func NewReplica(rt Runtime) *Replica {
	return &Replica{dir: engine.NewDirectory(), rt: rt}
}

// OnInsert registers the callback fired after a remote insert is applied.
func (r *Replica) OnInsert(f func(InsertEvent)) { r.onInsert = f }

// OnDelete registers the callback fired after a remote delete is applied.
func (r *Replica) OnDelete(f func(DeleteEvent)) { r.onDelete = f }

// Length returns the number of present characters.
func (r *Replica) Length() int { return r.dir.Len() }

// String renders the replica's current text by an inorder walk of the
// balanced index (spec.md §4.2's toString()).
func (r *Replica) String() string {
	return string(engine.InorderPresent(r.dir.Root()))
}

// PositionAt returns the stable id of the character currently at index i.
func (r *Replica) PositionAt(i int) (id.ID, error) {
	n, err := engine.IndexToNode(r.dir.Root(), i)
	if err != nil {
		return id.Root, err
	}
	return n.ID, nil
}

// IndexOf returns the current index of the character with the given id, and
// whether it is still present (a tombstoned id resolves to the index it
// would reappear at, with ok=false).
func (r *Replica) IndexOf(pos id.ID) (int, bool, error) {
	n, ok := r.dir.Lookup(pos)
	if !ok {
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownID, pos)
	}
	idx, present := engine.NodeToIndex(n)
	return idx, present, nil
}

// Insert applies a local edit: s is spliced into the text starting at index
// i, one character at a time, each character minting its own id and anchor
// per spec.md §4.1, applying directly to local state (the same
// apply-then-broadcast split as the teacher's LocalInsert) and then
// broadcasting the wire operation via the Runtime. It does not fire
// InsertEvent: the caller already knows what it inserted.
func (r *Replica) Insert(i int, s string) error {
	for _, ch := range s {
		parentID, isLeftChild, err := r.dir.Anchor(i)
		if err != nil {
			return err
		}
		nid := r.rt.GetUID()
		if _, err := r.dir.Insert(nid, parentID, isLeftChild, ch); err != nil {
			return err
		}
		op := InsertOp{NodeID: nid, ParentID: parentID, IsLeftChild: isLeftChild, Value: ch}
		data, err := EncodeOperation(op)
		if err != nil {
			return err
		}
		r.rt.SendPrimitive(data)
		i++
	}
	return nil
}

// Delete applies a local edit: the count characters starting at index i are
// tombstoned. Target ids are resolved right to left against the pre-delete
// state (spec.md §4.4) before any delete is applied, so that deleting index
// i doesn't shift the indices of the characters after it that still need
// resolving.
func (r *Replica) Delete(i, count int) error {
	ids := make([]id.ID, count)
	for k := 0; k < count; k++ {
		n, err := engine.IndexToNode(r.dir.Root(), i+count-1-k)
		if err != nil {
			return err
		}
		ids[count-1-k] = n.ID
	}
	for _, nid := range ids {
		if err := r.dir.Delete(nid); err != nil {
			return err
		}
		data, err := EncodeOperation(DeleteOp{NodeID: nid})
		if err != nil {
			return err
		}
		r.rt.SendPrimitive(data)
	}
	return nil
}

// ReceivePrimitive applies a remote operation, decoded from data, to local
// state and fires the matching event. meta is opaque causal-delivery
// bookkeeping handed back by the Runtime (e.g. runtime.Meta); Replica
// itself doesn't interpret it, it only exists so a Runtime can thread
// sender/sequence information through without Replica importing runtime.
func (r *Replica) ReceivePrimitive(data []byte, meta any) error {
	op, err := DecodeOperation(data)
	if err != nil {
		return err
	}
	switch o := op.(type) {
	case InsertOp:
		if _, err := r.dir.Insert(o.NodeID, o.ParentID, o.IsLeftChild, o.Value); err != nil {
			return err
		}
		if r.onInsert != nil {
			idx, _ := engine.NodeToIndex(mustLookup(r.dir, o.NodeID))
			r.onInsert(InsertEvent{Index: idx, Value: o.Value, Meta: meta})
		}
	case DeleteOp:
		n, ok := r.dir.Lookup(o.NodeID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownID, o.NodeID)
		}
		idx, present := engine.NodeToIndex(n)
		deletedValue := n.Value
		if err := r.dir.Delete(o.NodeID); err != nil {
			return err
		}
		if present && r.onDelete != nil {
			r.onDelete(DeleteEvent{Index: idx, DeletedValues: []rune{deletedValue}, Meta: meta})
		}
	default:
		return fmt.Errorf("%w: unsupported operation %T", ErrInvariantViolation, op)
	}
	return nil
}

func mustLookup(d *engine.Directory, nid id.ID) *engine.Node {
	n, _ := d.Lookup(nid)
	return n
}

// Stats delegates to the engine's debug snapshot (spec.md supplement: see
// SPEC_FULL.md §C).
func (r *Replica) Stats() engine.Stats { return r.dir.Stats() }

// Validate delegates to the engine's invariant check.
func (r *Replica) Validate() error { return r.dir.Validate() }

// Save always returns ErrNotImplemented: persistence is handled out of
// process by store.OpLog replaying the operation stream, so Replica itself
// does not serialize its tree.
func (r *Replica) Save() ([]byte, error) {
	return nil, ErrNotImplemented
}

// Load always returns ErrNotImplemented, like Save.
func (r *Replica) Load(data []byte) error {
	return ErrNotImplemented
}
