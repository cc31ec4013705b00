package editor

import (
	"github.com/wudi/redact/contentstream"
	"github.com/wudi/redact/coords"
)

// OpSpatialIndex indexes parsed operations by their traced bbox.
// Entries whose bbox falls outside the tree's page bounds go on a flat
// outlier list: content drawn off-page is invisible when rendered but
// still extractable, so it must remain selectable.
type OpSpatialIndex struct {
	tree     *QuadTree
	outliers []quadEntry
}

// NewOpSpatialIndex builds an index over the page's display-space area.
func NewOpSpatialIndex(pageBounds coords.Rect) *OpSpatialIndex {
	return &OpSpatialIndex{tree: NewQuadTree(pageBounds, 10)}
}

// IndexOps inserts every operation that has a bbox. Operations without
// geometry (state markers, passthrough) are not indexed and therefore
// never selected.
func (idx *OpSpatialIndex) IndexOps(ops []contentstream.Op) {
	for i, op := range ops {
		if bbox, ok := op.Bounds(); ok {
			idx.Insert(bbox, i)
		}
	}
}

func (idx *OpSpatialIndex) Insert(rect coords.Rect, index int) {
	if !idx.tree.Insert(rect, index) {
		idx.outliers = append(idx.outliers, quadEntry{Rect: rect, Index: index})
	}
}

func (idx *OpSpatialIndex) Query(rect coords.Rect) []int {
	found := idx.tree.Query(rect)
	for _, e := range idx.outliers {
		if overlaps(e.Rect, rect) {
			found = append(found, e.Index)
		}
	}
	return found
}
