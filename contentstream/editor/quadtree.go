package editor

import "github.com/wudi/redact/coords"

// QuadTree is a spatial index over display-space rectangles. Entries
// that straddle a subdivision boundary stay on the inner node.
type QuadTree struct {
	Bounds   coords.Rect
	Capacity int
	Entries  []quadEntry
	Nodes    []*QuadTree
}

type quadEntry struct {
	Rect  coords.Rect
	Index int
}

func NewQuadTree(bounds coords.Rect, capacity int) *QuadTree {
	return &QuadTree{
		Bounds:   bounds,
		Capacity: capacity,
		Entries:  make([]quadEntry, 0, capacity),
	}
}

func (qt *QuadTree) Insert(rect coords.Rect, index int) bool {
	if !overlaps(qt.Bounds, rect) {
		return false
	}

	if qt.Nodes != nil {
		for _, node := range qt.Nodes {
			if covers(node.Bounds, rect) {
				if node.Insert(rect, index) {
					return true
				}
			}
		}
		// straddles children: keep here
		qt.Entries = append(qt.Entries, quadEntry{Rect: rect, Index: index})
		return true
	}

	if len(qt.Entries) < qt.Capacity {
		qt.Entries = append(qt.Entries, quadEntry{Rect: rect, Index: index})
		return true
	}

	qt.subdivide()
	old := qt.Entries
	qt.Entries = make([]quadEntry, 0, qt.Capacity)
	for _, e := range old {
		qt.Insert(e.Rect, e.Index)
	}
	return qt.Insert(rect, index)
}

func (qt *QuadTree) subdivide() {
	xMid := qt.Bounds.X + qt.Bounds.W/2
	yMid := qt.Bounds.Y + qt.Bounds.H/2
	halfW := qt.Bounds.W / 2
	halfH := qt.Bounds.H / 2
	mk := func(x, y float64) *QuadTree {
		b := qt.Bounds
		b.X, b.Y, b.W, b.H = x, y, halfW, halfH
		return NewQuadTree(b, qt.Capacity)
	}
	qt.Nodes = []*QuadTree{
		mk(qt.Bounds.X, qt.Bounds.Y),
		mk(xMid, qt.Bounds.Y),
		mk(qt.Bounds.X, yMid),
		mk(xMid, yMid),
	}
}

// Query returns the indices of all entries overlapping rangeRect.
func (qt *QuadTree) Query(rangeRect coords.Rect) []int {
	var found []int
	if !overlaps(qt.Bounds, rangeRect) {
		return found
	}
	for _, e := range qt.Entries {
		if overlaps(e.Rect, rangeRect) {
			found = append(found, e.Index)
		}
	}
	for _, node := range qt.Nodes {
		found = append(found, node.Query(rangeRect)...)
	}
	return found
}

// overlaps is a positive-area intersection test. The quadtree only ever
// holds display-space rects, so tags are not re-checked per node.
func overlaps(a, b coords.Rect) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

func covers(outer, inner coords.Rect) bool {
	return inner.X >= outer.X && inner.X+inner.W <= outer.X+outer.W &&
		inner.Y >= outer.Y && inner.Y+inner.H <= outer.Y+outer.H
}
