package contentstream

import (
	"github.com/wudi/redact/coords"
	"github.com/wudi/redact/model"
)

// Operand is a type-safe content-stream operand value.
type Operand interface {
	operand()
	Type() string
}

type NumberOperand struct{ Value float64 }

func (NumberOperand) operand()     {}
func (NumberOperand) Type() string { return "number" }

type NameOperand struct{ Value string }

func (NameOperand) operand()     {}
func (NameOperand) Type() string { return "name" }

type StringOperand struct{ Value []byte }

func (StringOperand) operand()     {}
func (StringOperand) Type() string { return "string" }

type ArrayOperand struct{ Values []Operand }

func (ArrayOperand) operand()     {}
func (ArrayOperand) Type() string { return "array" }

type DictOperand struct{ Values map[string]Operand }

func (DictOperand) operand()     {}
func (DictOperand) Type() string { return "dict" }

// Op is one parsed drawing instruction. Raw returns the source bytes
// the instruction was read from, so unmodified instructions re-serialize
// byte for byte. Bounds is the display-space bbox, unset until the
// tracer has run.
type Op interface {
	op()
	Raw() []byte
	Bounds() (coords.Rect, bool)
	SetBounds(coords.Rect)
}

type opCommon struct {
	raw    []byte
	bbox   coords.Rect
	hasBox bool
}

func (c *opCommon) op()          {}
func (c *opCommon) Raw() []byte  { return c.raw }
func (c *opCommon) Bounds() (coords.Rect, bool) {
	return c.bbox, c.hasBox
}
func (c *opCommon) SetBounds(r coords.Rect) {
	c.bbox = r
	c.hasBox = true
}

// TextShowOp is a Tj / ' / " / TJ instruction: one glyph run. Advance is
// the run's total cursor displacement in text-space units (font size,
// character and word spacing and TJ kerns applied).
type TextShowOp struct {
	opCommon
	Text     []byte // character codes, TJ strings concatenated
	Decoded  string
	FontName string
	Font     *model.Font
	FontSize float64
	Advance  float64
	Rise     float64
	// TextMatrix is the text matrix at the start of the run; CTM the
	// transform active when it was shown.
	TextMatrix coords.Matrix
	CTM        coords.Matrix
}

// PaintKind classifies the operator that consumed a path.
type PaintKind int

const (
	PaintStroke PaintKind = iota
	PaintFill
	PaintFillStroke
	PaintNone // 'n': path ends without painting (clipping helper)
)

// PathPaintOp is a painted path. The raw span covers the construction
// operators (m/l/c/v/y/re/h) through the paint operator, so removing the
// op removes the shape's geometry with it. Points are in document space
// (already mapped through the CTM).
type PathPaintOp struct {
	opCommon
	Points []coords.Point
	Kind   PaintKind
}

// ImageDrawOp is a Do instruction referencing an XObject, or an inline
// BI…ID…EI section. Placement is the CTM mapping the unit square to the
// drawn area.
type ImageDrawOp struct {
	opCommon
	Name      string
	Placement coords.Matrix
	Inline    bool
}

// StateKind identifies block structure instructions.
type StateKind int

const (
	StateSave StateKind = iota
	StateRestore
	StateBeginText
	StateEndText
)

// StateOp is a q / Q / BT / ET instruction. These are never removed by
// selection; the stream builder uses them to keep blocks balanced.
type StateOp struct {
	opCommon
	Kind StateKind
}

// OtherOp is any instruction the pipeline does not model. It is
// preserved verbatim: dropping an operator we do not understand could
// silently corrupt unrelated graphics.
type OtherOp struct {
	opCommon
	Operator string
	Operands []Operand
}

// SynthesizeOp wraps freshly generated instruction bytes in an OtherOp,
// for instructions created by the normalizer or builder rather than
// parsed from the page.
func SynthesizeOp(operator string, raw []byte) *OtherOp {
	return &OtherOp{opCommon: opCommon{raw: raw}, Operator: operator}
}

// SynthesizeTextShow builds a replacement glyph run from an existing one,
// with new text and raw bytes. Used when kept runs are coalesced.
func SynthesizeTextShow(base *TextShowOp, text []byte, raw []byte) *TextShowOp {
	out := *base
	out.opCommon = opCommon{raw: raw, bbox: base.bbox, hasBox: base.hasBox}
	out.Text = text
	return &out
}

// ParseWarning reports one malformed instruction that was preserved as
// passthrough instead of parsed.
type ParseWarning struct {
	Offset   int
	Operator string
	Message  string
}

func (w ParseWarning) String() string { return w.Message }

// TextParams is the text-state subset saved and restored with q/Q.
type TextParams struct {
	FontName    string
	Font        *model.Font
	FontSize    float64
	CharSpacing float64
	WordSpacing float64
	HorizScale  float64 // percent, default 100
	Leading     float64
	Rise        float64
	RenderMode  int
}

// GraphicsState mirrors the PDF graphics state during parsing. Save
// pushes a snapshot clone; Restore pops it. The stack is an explicit
// slice, owned by a single parse pass.
type GraphicsState struct {
	CTM   coords.Matrix
	Text  TextParams
	stack []GraphicsState
}

func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM:  coords.Identity(),
		Text: TextParams{HorizScale: 100},
	}
}

func (gs *GraphicsState) Save() {
	clone := *gs
	clone.stack = nil
	gs.stack = append(gs.stack, clone)
}

// Restore pops the last snapshot. Restoring past the bottom of the
// stack is ignored (malformed streams do this; the builder rebalances).
func (gs *GraphicsState) Restore() {
	n := len(gs.stack)
	if n == 0 {
		return
	}
	top := gs.stack[n-1]
	stack := gs.stack[:n-1]
	*gs = top
	gs.stack = stack
}

// Depth returns the number of saved states.
func (gs *GraphicsState) Depth() int { return len(gs.stack) }
