package crdt_test

import (
	"testing"

	"textweave/crdt"
	"textweave/runtime"
)

func join(hub *runtime.Hub, tag string) *crdt.Replica {
	var r *crdt.Replica
	rt := hub.Join(tag, receiverFunc(func(data []byte, meta any) error {
		return r.ReceivePrimitive(data, meta)
	}))
	r = crdt.NewReplica(rt)
	return r
}

type receiverFunc func(data []byte, meta any) error

func (f receiverFunc) ReceivePrimitive(data []byte, meta any) error { return f(data, meta) }

func TestLocalInsertAndString(t *testing.T) {
	hub := runtime.NewHub()
	alice := join(hub, "alice")

	if err := alice.Insert(0, "Hello"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got, want := alice.String(), "Hello"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := alice.Length(), 5; got != want {
		t.Errorf("Length() = %d, want %d", got, want)
	}
}

func TestTwoReplicasConvergeForwardInsert(t *testing.T) {
	hub := runtime.NewHub()
	alice := join(hub, "alice")
	bob := join(hub, "bob")

	if err := alice.Insert(0, "Grocery List: "); err != nil {
		t.Fatalf("alice insert: %v", err)
	}
	if err := bob.Insert(bob.Length(), "apple, banana"); err != nil {
		t.Fatalf("bob insert: %v", err)
	}

	want := "Grocery List: apple, banana"
	if got := alice.String(); got != want {
		t.Errorf("alice = %q, want %q", got, want)
	}
	if got := bob.String(); got != want {
		t.Errorf("bob = %q, want %q", got, want)
	}
	if err := alice.Validate(); err != nil {
		t.Errorf("alice Validate: %v", err)
	}
	if err := bob.Validate(); err != nil {
		t.Errorf("bob Validate: %v", err)
	}
}

func TestTwoReplicasConvergeWithConcurrentDelete(t *testing.T) {
	hub := runtime.NewHub()
	alice := join(hub, "alice")
	bob := join(hub, "bob")

	if err := alice.Insert(0, "Hello, world"); err != nil {
		t.Fatalf("alice insert: %v", err)
	}
	if got := bob.String(); got != "Hello, world" {
		t.Fatalf("bob after remote insert = %q, want %q", bob.String(), "Hello, world")
	}

	// alice deletes ", world", then bob appends "!" against its own current
	// length — bob's append lands after "Hello" because it resolves its own
	// anchor against its already-updated local state, not a stale index.
	if err := alice.Delete(5, len(", world")); err != nil {
		t.Fatalf("alice delete: %v", err)
	}
	if err := bob.Insert(bob.Length(), "!"); err != nil {
		t.Fatalf("bob insert: %v", err)
	}

	want := "Hello!"
	if got := alice.String(); got != want {
		t.Errorf("alice = %q, want %q", got, want)
	}
	if got := bob.String(); got != want {
		t.Errorf("bob = %q, want %q", got, want)
	}
}

func TestReceivePrimitiveFiresEvents(t *testing.T) {
	hub := runtime.NewHub()
	alice := join(hub, "alice")
	bob := join(hub, "bob")

	var gotInsert crdt.InsertEvent
	insertFired := false
	bob.OnInsert(func(e crdt.InsertEvent) {
		insertFired = true
		gotInsert = e
	})

	if err := alice.Insert(0, "x"); err != nil {
		t.Fatalf("alice insert: %v", err)
	}
	if !insertFired {
		t.Fatalf("bob's OnInsert callback never fired for a remote insert")
	}
	if gotInsert.Value != 'x' || gotInsert.Index != 0 {
		t.Errorf("InsertEvent = %+v, want {Index:0 Value:120}", gotInsert)
	}
	meta, ok := gotInsert.Meta.(runtime.Meta)
	if !ok || meta.From != "alice" || meta.Seq != 1 {
		t.Errorf("InsertEvent.Meta = %#v, want runtime.Meta{From:alice Seq:1}", gotInsert.Meta)
	}

	var gotDelete crdt.DeleteEvent
	deleteFired := false
	bob.OnDelete(func(e crdt.DeleteEvent) {
		deleteFired = true
		gotDelete = e
	})
	if err := alice.Delete(0, 1); err != nil {
		t.Fatalf("alice delete: %v", err)
	}
	if !deleteFired {
		t.Fatalf("bob's OnDelete callback never fired for a remote delete")
	}
	if len(gotDelete.DeletedValues) != 1 || gotDelete.DeletedValues[0] != 'x' {
		t.Errorf("DeleteEvent.DeletedValues = %q, want ['x']", gotDelete.DeletedValues)
	}
	if meta, ok := gotDelete.Meta.(runtime.Meta); !ok || meta.From != "alice" {
		t.Errorf("DeleteEvent.Meta = %#v, want runtime.Meta{From:alice ...}", gotDelete.Meta)
	}
	if got, want := bob.String(), ""; got != want {
		t.Errorf("bob = %q, want %q", got, want)
	}
}

func TestPositionAtAndIndexOfRoundTrip(t *testing.T) {
	hub := runtime.NewHub()
	alice := join(hub, "alice")
	if err := alice.Insert(0, "abcde"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	pos, err := alice.PositionAt(2)
	if err != nil {
		t.Fatalf("PositionAt: %v", err)
	}
	idx, present, err := alice.IndexOf(pos)
	if err != nil {
		t.Fatalf("IndexOf: %v", err)
	}
	if !present || idx != 2 {
		t.Errorf("IndexOf(PositionAt(2)) = (%d, %v), want (2, true)", idx, present)
	}
}

func TestSaveLoadNotImplemented(t *testing.T) {
	hub := runtime.NewHub()
	alice := join(hub, "alice")
	if _, err := alice.Save(); err == nil {
		t.Errorf("Save should report not implemented")
	}
	if err := alice.Load(nil); err == nil {
		t.Errorf("Load should report not implemented")
	}
}
