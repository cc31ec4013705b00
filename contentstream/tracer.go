package contentstream

import (
	"github.com/wudi/redact/coords"
	"github.com/wudi/redact/fonts"
	"github.com/wudi/redact/model"
)

// Tracer computes display-space bounding boxes for parsed operations.
// It is the measuring half of the pipeline; it never mutates raw bytes.
type Tracer struct {
	pageHeight float64
	metrics    map[*model.Font]*fonts.Metrics
}

func NewTracer(pageHeight float64) *Tracer {
	return &Tracer{pageHeight: pageHeight, metrics: make(map[*model.Font]*fonts.Metrics)}
}

// Trace fills in the bbox of every operation that has geometry. State
// and passthrough operations get no bbox and are never selectable.
func (t *Tracer) Trace(ops []Op) {
	for _, op := range ops {
		switch v := op.(type) {
		case *TextShowOp:
			v.SetBounds(t.textBounds(v))
		case *PathPaintOp:
			if len(v.Points) > 0 {
				v.SetBounds(t.flip(coords.RectFromPoints(coords.SpaceDocument, v.Points...)))
			}
		case *ImageDrawOp:
			unit := []coords.Point{
				v.Placement.Transform(coords.Point{X: 0, Y: 0}),
				v.Placement.Transform(coords.Point{X: 1, Y: 0}),
				v.Placement.Transform(coords.Point{X: 0, Y: 1}),
				v.Placement.Transform(coords.Point{X: 1, Y: 1}),
			}
			v.SetBounds(t.flip(coords.RectFromPoints(coords.SpaceDocument, unit...)))
		}
	}
}

// textBounds maps the glyph run's advance and vertical extent through
// the text matrix and CTM active when it was shown.
func (t *Tracer) textBounds(v *TextShowOp) coords.Rect {
	m := t.metricsFor(v.Font)
	scale := v.FontSize / 1000
	yMin := v.Rise + m.Descent*scale
	yMax := v.Rise + m.Ascent*scale

	trm := v.TextMatrix.Multiply(v.CTM)
	corners := []coords.Point{
		trm.Transform(coords.Point{X: 0, Y: yMin}),
		trm.Transform(coords.Point{X: v.Advance, Y: yMin}),
		trm.Transform(coords.Point{X: 0, Y: yMax}),
		trm.Transform(coords.Point{X: v.Advance, Y: yMax}),
	}
	return t.flip(coords.RectFromPoints(coords.SpaceDocument, corners...))
}

// flip converts a document-space rect to display space.
func (t *Tracer) flip(r coords.Rect) coords.Rect {
	disp, err := coords.DocumentToDisplay(r, t.pageHeight)
	if err != nil {
		// r is built in this file and always tagged correctly
		return coords.DisplayRect(r.X, r.Y, r.W, r.H)
	}
	return disp
}

func (t *Tracer) metricsFor(f *model.Font) *fonts.Metrics {
	m, ok := t.metrics[f]
	if !ok {
		m = fonts.For(f)
		t.metrics[f] = m
	}
	return m
}
