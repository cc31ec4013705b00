package editor

import (
	"github.com/wudi/redact/contentstream"
	"github.com/wudi/redact/coords"
)

// normalizeOps builds the kept-operation list and scrubs the positional
// traces a removal leaves behind. A kept run after a removed run keeps
// its absolute position in the raw stream, so the visible gap would
// encode the removed run's width; the normalizer re-anchors such runs a
// fixed minimum gap after their kept predecessor and drops positioning
// instructions that only served removed content.
func normalizeOps(ops []contentstream.Op, removed map[int]bool, opts *Options) []contentstream.Op {
	if !opts.NormalizePositions {
		return keptOnly(ops, removed)
	}

	moves := orphanedMoves(ops, removed)

	kept := make([]contentstream.Op, 0, len(ops))
	reanchor := collectReanchors(ops, removed)

	for i, op := range ops {
		if removed[i] {
			continue
		}
		if rep, ok := moves[i]; ok {
			if rep != nil {
				kept = append(kept, rep)
			}
			continue
		}
		if tm, ok := reanchor[i]; ok {
			kept = append(kept, tm)
		}
		kept = append(kept, op)
	}

	if opts.SecurityLevel >= Enhanced {
		kept = coalesceRuns(kept)
	}
	return kept
}

func keptOnly(ops []contentstream.Op, removed map[int]bool) []contentstream.Op {
	kept := make([]contentstream.Op, 0, len(ops))
	for i, op := range ops {
		if !removed[i] {
			kept = append(kept, op)
		}
	}
	return kept
}

// orphanedMoves maps Td/Tm instructions whose only purpose was to
// position a run that is being removed. Left in place, their operands
// would still spell out where the removed text sat — but the move also
// established the line matrix that later relative positioning (Td, TD,
// T*) builds on, so it cannot simply vanish. A move is dropped (nil
// entry) only when the line matrix is re-established before anything
// consumes it; otherwise it is replaced by an equivalent absolute Tm.
// TD/T* themselves always stay: they also mutate the leading and
// dropping them would shift later lines.
func orphanedMoves(ops []contentstream.Op, removed map[int]bool) map[int]*contentstream.OtherOp {
	out := make(map[int]*contentstream.OtherOp)
	for i, op := range ops {
		other, ok := op.(*contentstream.OtherOp)
		if !ok || (other.Operator != "Td" && other.Operator != "Tm") {
			continue
		}
		show := nextShow(ops, i)
		if show < 0 || !removed[show] {
			continue
		}
		if lineMatrixDead(ops, show, removed) {
			out[i] = nil
			continue
		}
		out[i] = restoreLineMatrix(ops[show].(*contentstream.TextShowOp))
	}
	return out
}

// nextShow returns the index of the glyph run the move at i positions,
// or -1 when another positioning instruction or block marker intervenes.
func nextShow(ops []contentstream.Op, i int) int {
	for j := i + 1; j < len(ops); j++ {
		switch next := ops[j].(type) {
		case *contentstream.TextShowOp:
			return j
		case *contentstream.OtherOp:
			if isPositioning(next.Operator) {
				return -1
			}
		case *contentstream.StateOp:
			return -1
		}
	}
	return -1
}

// lineMatrixDead reports whether nothing after the removed run at show
// reads the line matrix before it is reset absolutely. An absolute Tm,
// the end of the text block (any later block re-begins with BT, which
// resets) or the end of the stream all kill it; a kept run or a
// relative move keeps it alive.
func lineMatrixDead(ops []contentstream.Op, show int, removed map[int]bool) bool {
	for k := show + 1; k < len(ops); k++ {
		switch next := ops[k].(type) {
		case *contentstream.TextShowOp:
			if !removed[k] {
				return false
			}
		case *contentstream.OtherOp:
			if next.Operator == "Tm" {
				return true
			}
			if isPositioning(next.Operator) {
				return false
			}
		case *contentstream.StateOp:
			if next.Kind == contentstream.StateBeginText || next.Kind == contentstream.StateEndText {
				return true
			}
		}
	}
	return true
}

// restoreLineMatrix builds the Tm that re-establishes the matrix the
// orphaned move produced, taken from the removed run it positioned.
func restoreLineMatrix(show *contentstream.TextShowOp) *contentstream.OtherOp {
	m := show.TextMatrix
	operands := []contentstream.Operand{
		contentstream.NumberOperand{Value: m[0]},
		contentstream.NumberOperand{Value: m[1]},
		contentstream.NumberOperand{Value: m[2]},
		contentstream.NumberOperand{Value: m[3]},
		contentstream.NumberOperand{Value: m[4]},
		contentstream.NumberOperand{Value: m[5]},
	}
	op := contentstream.SynthesizeOp("Tm", contentstream.SerializeOp("Tm", operands...))
	op.Operands = operands
	return op
}

func isPositioning(operator string) bool {
	switch operator {
	case "Td", "TD", "Tm", "T*":
		return true
	}
	return false
}

// collectReanchors finds kept glyph runs that directly follow removed
// runs on the same text line and synthesizes a Tm placing each a fixed
// minimum gap after its kept predecessor (or at the removed run's start
// when the line begins with a removal). The gap no longer encodes the
// removed content's width.
func collectReanchors(ops []contentstream.Op, removed map[int]bool) map[int]*contentstream.OtherOp {
	out := make(map[int]*contentstream.OtherOp)

	type runRef struct {
		index int
		op    *contentstream.TextShowOp
	}
	var runs []runRef
	for i, op := range ops {
		if show, ok := op.(*contentstream.TextShowOp); ok {
			if _, hasBox := show.Bounds(); hasBox {
				runs = append(runs, runRef{index: i, op: show})
			}
		}
	}

	// group runs into lines by vertical bbox overlap, in stream order
	used := make([]bool, len(runs))
	for i := range runs {
		if used[i] {
			continue
		}
		line := []runRef{runs[i]}
		used[i] = true
		base, _ := runs[i].op.Bounds()
		for j := i + 1; j < len(runs); j++ {
			if used[j] {
				continue
			}
			b, _ := runs[j].op.Bounds()
			if verticalOverlap(base, b) {
				line = append(line, runRef{index: runs[j].index, op: runs[j].op})
				used[j] = true
			}
		}

		var prevKept *contentstream.TextShowOp
		var pendingRemoved *contentstream.TextShowOp
		for _, r := range line {
			if removed[r.index] {
				if pendingRemoved == nil {
					pendingRemoved = r.op
				}
				continue
			}
			if pendingRemoved != nil {
				bbox, _ := r.op.Bounds()
				var anchorX float64
				if prevKept != nil {
					pb, _ := prevKept.Bounds()
					anchorX = pb.MaxX() + minGap
				} else {
					rb, _ := pendingRemoved.Bounds()
					anchorX = rb.X
				}
				if tm := reanchorTm(r.op, anchorX); tm != nil {
					out[r.index] = tm
					shifted := bbox
					shifted.X = anchorX
					r.op.SetBounds(shifted)
				}
				pendingRemoved = nil
			}
			prevKept = r.op
		}
	}
	return out
}

// reanchorTm builds a Tm instruction moving the run's start to the
// given display-space x, preserving its vertical position and scale.
// Display x equals document x, so only the CTM needs inverting.
func reanchorTm(show *contentstream.TextShowOp, displayX float64) *contentstream.OtherOp {
	trm := show.TextMatrix.Multiply(show.CTM)
	start := trm.Transform(coords.Point{X: 0, Y: 0})
	inv, err := show.CTM.Inverse()
	if err != nil {
		return nil
	}
	t := inv.Transform(coords.Point{X: displayX, Y: start.Y})
	m := show.TextMatrix
	m[4] = t.X
	m[5] = t.Y
	raw := contentstream.SerializeOp("Tm",
		contentstream.NumberOperand{Value: m[0]},
		contentstream.NumberOperand{Value: m[1]},
		contentstream.NumberOperand{Value: m[2]},
		contentstream.NumberOperand{Value: m[3]},
		contentstream.NumberOperand{Value: m[4]},
		contentstream.NumberOperand{Value: m[5]},
	)
	op := contentstream.SynthesizeOp("Tm", raw)
	op.Operands = []contentstream.Operand{
		contentstream.NumberOperand{Value: m[0]},
		contentstream.NumberOperand{Value: m[1]},
		contentstream.NumberOperand{Value: m[2]},
		contentstream.NumberOperand{Value: m[3]},
		contentstream.NumberOperand{Value: m[4]},
		contentstream.NumberOperand{Value: m[5]},
	}
	return op
}

// coalesceRuns merges directly consecutive kept runs that share a line,
// font and size into one instruction, hiding where one run ended and
// the next began.
func coalesceRuns(kept []contentstream.Op) []contentstream.Op {
	out := make([]contentstream.Op, 0, len(kept))
	for _, op := range kept {
		show, ok := op.(*contentstream.TextShowOp)
		if !ok {
			out = append(out, op)
			continue
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(*contentstream.TextShowOp); ok && mergeable(prev, show) {
				combined := append(append([]byte(nil), prev.Text...), show.Text...)
				raw := append(contentstream.EscapeString(combined), []byte(" Tj\n")...)
				merged := contentstream.SynthesizeTextShow(prev, combined, raw)
				pb, _ := prev.Bounds()
				sb, _ := show.Bounds()
				if u, err := pb.Union(sb); err == nil {
					merged.SetBounds(u)
				}
				out[len(out)-1] = merged
				continue
			}
		}
		out = append(out, show)
	}
	return out
}

func mergeable(a, b *contentstream.TextShowOp) bool {
	if a.FontName != b.FontName || a.FontSize != b.FontSize {
		return false
	}
	ab, okA := a.Bounds()
	bb, okB := b.Bounds()
	return okA && okB && verticalOverlap(ab, bb)
}

func verticalOverlap(a, b coords.Rect) bool {
	return a.Y < b.MaxY() && b.Y < a.MaxY()
}
