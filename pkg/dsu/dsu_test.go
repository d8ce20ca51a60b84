package dsu

import "testing"

func TestDeterministicTieBreak(t *testing.T) {
	d := New(4)
	d.Union(2, 1) // equal ranks (both 0): lower ordinal (1) should win
	if got := d.Find(2); got != 1 {
		t.Fatalf("expected representative 1 after equal-rank union, got %d", got)
	}

	d2 := New(4)
	d2.Union(1, 2) // argument order reversed, same pair
	if got := d2.Find(2); got != 1 {
		t.Fatalf("expected representative 1 regardless of union argument order, got %d", got)
	}
}

func TestGroupsSortedAscending(t *testing.T) {
	d := New(5)
	d.Union(0, 3)
	d.Union(3, 4)
	d.Union(1, 2)

	roots, members := d.Groups()
	if len(roots) != 2 {
		t.Fatalf("expected 2 groups, got %d: %v", len(roots), roots)
	}
	if roots[0] != 0 || roots[1] != 1 {
		t.Fatalf("expected roots [0 1], got %v", roots)
	}
	if got := members[0]; len(got) != 3 {
		t.Fatalf("expected group rooted at 0 to have 3 members, got %v", got)
	}
}

func TestNoOpOnSameSet(t *testing.T) {
	d := New(3)
	d.Union(0, 1)
	before := d.Find(0)
	d.Union(1, 0)
	if d.Find(0) != before {
		t.Fatalf("repeated union of already-joined elements changed representative")
	}
}
