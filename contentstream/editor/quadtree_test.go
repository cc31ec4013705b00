package editor

import (
	"sort"
	"testing"

	"github.com/wudi/redact/coords"
)

func TestQuadTreeInsertAndQuery(t *testing.T) {
	qt := NewQuadTree(coords.DisplayRect(0, 0, 100, 100), 4)
	rects := []coords.Rect{
		coords.DisplayRect(5, 5, 10, 10),
		coords.DisplayRect(80, 80, 10, 10),
		coords.DisplayRect(40, 40, 20, 20), // straddles all quadrants
	}
	for i, r := range rects {
		if !qt.Insert(r, i) {
			t.Fatalf("insert %d failed", i)
		}
	}
	got := qt.Query(coords.DisplayRect(0, 0, 30, 30))
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("query = %v, want [0]", got)
	}
	got = qt.Query(coords.DisplayRect(45, 45, 5, 5))
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("query = %v, want [2]", got)
	}
}

func TestQuadTreeSubdivision(t *testing.T) {
	qt := NewQuadTree(coords.DisplayRect(0, 0, 100, 100), 2)
	// enough entries to force several levels of subdivision
	for i := 0; i < 20; i++ {
		x := float64(i%5) * 18
		y := float64(i/5) * 22
		if !qt.Insert(coords.DisplayRect(x, y, 4, 4), i) {
			t.Fatalf("insert %d failed", i)
		}
	}
	if qt.Nodes == nil {
		t.Fatal("tree never subdivided")
	}
	got := qt.Query(coords.DisplayRect(0, 0, 100, 100))
	sort.Ints(got)
	if len(got) != 20 {
		t.Fatalf("full query returned %d entries, want 20", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("entry %d missing: %v", i, got)
		}
	}
}

func TestQuadTreeRejectsOutside(t *testing.T) {
	qt := NewQuadTree(coords.DisplayRect(0, 0, 100, 100), 4)
	if qt.Insert(coords.DisplayRect(200, 200, 10, 10), 0) {
		t.Fatal("insert outside bounds should fail")
	}
	if got := qt.Query(coords.DisplayRect(200, 200, 10, 10)); len(got) != 0 {
		t.Fatalf("query = %v", got)
	}
}

func TestOpIndexKeepsOutOfBoundsEntries(t *testing.T) {
	idx := NewOpSpatialIndex(coords.DisplayRect(0, 0, 100, 100))
	idx.Insert(coords.DisplayRect(20, 20, 10, 10), 1)
	// entirely outside the page area: the tree rejects it, the index
	// must still keep it queryable
	idx.Insert(coords.DisplayRect(150, 10, 20, 10), 7)

	got := idx.Query(coords.DisplayRect(140, 5, 40, 20))
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("query = %v, want [7]", got)
	}
	got = idx.Query(coords.DisplayRect(0, 0, 100, 100))
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("in-bounds query = %v, want [1]", got)
	}
}

func TestOverlapsNeedsPositiveArea(t *testing.T) {
	a := coords.DisplayRect(0, 0, 10, 10)
	if overlaps(a, coords.DisplayRect(10, 0, 5, 5)) {
		t.Fatal("edge contact is not overlap")
	}
	if !overlaps(a, coords.DisplayRect(9.9, 0, 5, 5)) {
		t.Fatal("positive-area intersection must overlap")
	}
}
