package engine

import (
	"testing"

	"textweave/internal/id"
)

func newGen(tag string) *id.Generator { return id.NewGenerator(tag) }

func insertString(t *testing.T, d *Directory, gen *id.Generator, at int, s string) {
	t.Helper()
	for i, ch := range s {
		parentID, isLeft, err := d.Anchor(at + i)
		if err != nil {
			t.Fatalf("Anchor(%d): %v", at+i, err)
		}
		if _, err := d.Insert(gen.Next(), parentID, isLeft, ch); err != nil {
			t.Fatalf("Insert at %d: %v", at+i, err)
		}
	}
}

func TestInsertSimple(t *testing.T) {
	want := "This is my example sentence"
	d := NewDirectory()
	gen := newGen("replica1")
	insertString(t, d, gen, 0, want)

	if got := string(InorderPresent(d.Root())); got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestInsertBackwards(t *testing.T) {
	want := "This is my example sentence"
	d := NewDirectory()
	gen := newGen("replica1")
	for i := len(want) - 1; i >= 0; i-- {
		insertString(t, d, gen, 0, string(want[i]))
	}
	if got := string(InorderPresent(d.Root())); got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDeleteSimple(t *testing.T) {
	d := NewDirectory()
	gen := newGen("replica1")
	insertString(t, d, gen, 0, "This is my example sentence")

	// delete "example " (8 characters starting at index 11)
	for i := 0; i < len("example "); i++ {
		n, err := IndexToNode(d.Root(), 11)
		if err != nil {
			t.Fatalf("IndexToNode(11): %v", err)
		}
		if err := d.Delete(n.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	}

	want := "This is my sentence"
	if got := string(InorderPresent(d.Root())); got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	d := NewDirectory()
	gen := newGen("replica1")
	insertString(t, d, gen, 0, "abc")

	n, err := IndexToNode(d.Root(), 1)
	if err != nil {
		t.Fatalf("IndexToNode: %v", err)
	}
	if err := d.Delete(n.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := d.Delete(n.ID); err != nil {
		t.Fatalf("second delete of already-tombstoned node should be a no-op, got: %v", err)
	}
	if got, want := string(InorderPresent(d.Root())), "ac"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestDeleteUnknownID(t *testing.T) {
	d := NewDirectory()
	if err := d.Delete(id.ID("does-not-exist")); err == nil {
		t.Errorf("Delete of an unknown id should return an error")
	}
}

func TestIndexToNodeOutOfBounds(t *testing.T) {
	d := NewDirectory()
	gen := newGen("replica1")
	insertString(t, d, gen, 0, "ab")

	if _, err := IndexToNode(d.Root(), 2); err == nil {
		t.Errorf("IndexToNode(2) on a 2-character text should be out of bounds")
	}
	if _, err := IndexToNode(d.Root(), -1); err == nil {
		t.Errorf("IndexToNode(-1) should be out of bounds")
	}
}

func TestConcurrentInsertsConvergeToSameCanonicalOrder(t *testing.T) {
	// Two replicas insert at the same anchor concurrently; canonical order
	// must break the tie the same way regardless of application order.
	d1 := NewDirectory()
	d2 := NewDirectory()
	genA := newGen("aaaa")
	genB := newGen("bbbb")

	parentID, isLeft, err := d1.Anchor(0)
	if err != nil {
		t.Fatal(err)
	}
	idA := genA.Next()
	idB := genB.Next()

	if _, err := d1.Insert(idA, parentID, isLeft, 'A'); err != nil {
		t.Fatal(err)
	}
	if _, err := d1.Insert(idB, parentID, isLeft, 'B'); err != nil {
		t.Fatal(err)
	}

	if _, err := d2.Insert(idB, parentID, isLeft, 'B'); err != nil {
		t.Fatal(err)
	}
	if _, err := d2.Insert(idA, parentID, isLeft, 'A'); err != nil {
		t.Fatal(err)
	}

	got1 := string(InorderPresent(d1.Root()))
	got2 := string(InorderPresent(d2.Root()))
	if got1 != got2 {
		t.Errorf("replicas diverged: %q vs %q", got1, got2)
	}
	if err := d1.Validate(); err != nil {
		t.Errorf("d1 Validate: %v", err)
	}
	if err := d2.Validate(); err != nil {
		t.Errorf("d2 Validate: %v", err)
	}
}

func TestValidateCatchesNothingOnAHealthyTree(t *testing.T) {
	d := NewDirectory()
	gen := newGen("replica1")
	insertString(t, d, gen, 0, "the quick brown fox jumps over the lazy dog")
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate on a freshly built tree should pass: %v", err)
	}
	stats := d.Stats()
	if stats.Length != len("the quick brown fox jumps over the lazy dog") {
		t.Errorf("Stats().Length = %d, want %d", stats.Length, len("the quick brown fox jumps over the lazy dog"))
	}
	if stats.TombstoneCount != 0 {
		t.Errorf("Stats().TombstoneCount = %d, want 0", stats.TombstoneCount)
	}
}
