package editor

import (
	"context"
	"fmt"

	"github.com/wudi/redact/contentstream"
	"github.com/wudi/redact/coords"
	"github.com/wudi/redact/scripting"
)

// selectRemoved partitions operations into kept and removed for a batch
// of display-space rectangles. Any positive-area overlap removes a
// content-bearing operation; the result is a set, so rectangle order
// cannot matter. State markers and passthrough operators are never
// removed. Removed glyph runs are recorded in the terms log.
func selectRemoved(ctx context.Context, ops []contentstream.Op, rects []coords.Rect,
	pageBounds coords.Rect, opts *Options, pageIndex int, log *TermsLog) (map[int]bool, error) {

	removed := make(map[int]bool)
	if len(rects) == 0 {
		return removed, nil
	}

	idx := NewOpSpatialIndex(pageBounds)
	idx.IndexOps(ops)

	for _, rect := range rects {
		for _, i := range idx.Query(rect) {
			if removable(ops[i]) {
				removed[i] = true
			}
		}
		// Paranoid treats even zero-area edge contact of a path as
		// overlap; the conservative reading of partial coverage.
		if opts.SecurityLevel == Paranoid {
			for _, i := range idx.Query(rect.Inflate(touchEpsilon)) {
				if _, ok := ops[i].(*contentstream.PathPaintOp); ok && removable(ops[i]) {
					removed[i] = true
				}
			}
		}
	}

	if opts.Rule != nil {
		if err := applyRule(ctx, ops, removed, opts.Rule, pageIndex); err != nil {
			return nil, err
		}
	}

	for i := range removed {
		if show, ok := ops[i].(*contentstream.TextShowOp); ok {
			log.Add(show.Decoded)
		}
	}
	return removed, nil
}

// removable reports whether selection may remove this operation kind.
// Paths that paint nothing ('n', clipping helpers) stay: removing them
// would corrupt the clip state without removing any visible content.
func removable(op contentstream.Op) bool {
	switch v := op.(type) {
	case *contentstream.TextShowOp, *contentstream.ImageDrawOp:
		return true
	case *contentstream.PathPaintOp:
		return v.Kind != contentstream.PaintNone
	}
	return false
}

// applyRule offers every kept content-bearing operation to the rule.
// Rules only ever add removals.
func applyRule(ctx context.Context, ops []contentstream.Op, removed map[int]bool,
	rule scripting.Rule, pageIndex int) error {

	for i, op := range ops {
		if removed[i] || !removable(op) {
			continue
		}
		bbox, ok := op.Bounds()
		if !ok {
			continue
		}
		cand := scripting.Candidate{
			PageIndex: pageIndex,
			X:         bbox.X, Y: bbox.Y, W: bbox.W, H: bbox.H,
		}
		switch v := op.(type) {
		case *contentstream.TextShowOp:
			cand.Kind = "text"
			cand.Text = v.Decoded
		case *contentstream.PathPaintOp:
			cand.Kind = "path"
		case *contentstream.ImageDrawOp:
			cand.Kind = "image"
		}
		dec, err := rule.Evaluate(ctx, cand)
		if err != nil {
			return fmt.Errorf("redaction rule: %w", err)
		}
		if dec == scripting.Remove {
			removed[i] = true
		}
	}
	return nil
}
