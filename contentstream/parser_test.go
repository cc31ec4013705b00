package contentstream

import (
	"bytes"
	"math"
	"testing"

	"github.com/wudi/redact/model"
)

func testResources() *model.Resources {
	return &model.Resources{
		Fonts: map[string]*model.Font{
			"F1": {
				Subtype:  "Type1",
				BaseFont: "Helvetica",
				Widths:   map[int]float64{'A': 500, 'B': 500, 'C': 500, ' ': 250},
			},
		},
	}
}

func parseOps(t *testing.T, content string) *Result {
	t.Helper()
	return NewParser(testResources()).Parse([]byte(content))
}

func TestParseTextShow(t *testing.T) {
	result := parseOps(t, "BT /F1 10 Tf 100 700 Td (AB) Tj ET")
	if len(result.Warnings) != 0 {
		t.Fatalf("warnings: %v", result.Warnings)
	}
	var show *TextShowOp
	for _, op := range result.Ops {
		if s, ok := op.(*TextShowOp); ok {
			show = s
		}
	}
	if show == nil {
		t.Fatal("no text show parsed")
	}
	if string(show.Text) != "AB" || show.Decoded != "AB" {
		t.Errorf("text = %q decoded %q", show.Text, show.Decoded)
	}
	if show.FontName != "F1" || show.FontSize != 10 {
		t.Errorf("font = %q size %g", show.FontName, show.FontSize)
	}
	// two 500/1000 em glyphs at size 10
	if show.Advance != 10 {
		t.Errorf("advance = %g, want 10", show.Advance)
	}
	if show.TextMatrix[4] != 100 || show.TextMatrix[5] != 700 {
		t.Errorf("text matrix origin = (%g, %g)", show.TextMatrix[4], show.TextMatrix[5])
	}
	if string(show.Raw()) != "(AB) Tj" {
		t.Errorf("raw = %q", show.Raw())
	}
}

func TestParseTJKerning(t *testing.T) {
	result := parseOps(t, "BT /F1 10 Tf [(A) 100 (B)] TJ ET")
	var show *TextShowOp
	for _, op := range result.Ops {
		if s, ok := op.(*TextShowOp); ok {
			show = s
		}
	}
	if show == nil {
		t.Fatal("no text show parsed")
	}
	if string(show.Text) != "AB" {
		t.Errorf("text = %q", show.Text)
	}
	// 5 + 5 minus a 100/1000 * 10 kern
	if math.Abs(show.Advance-9) > 1e-9 {
		t.Errorf("advance = %g, want 9", show.Advance)
	}
}

func TestCursorAdvancesBetweenShows(t *testing.T) {
	result := parseOps(t, "BT /F1 10 Tf 0 0 Td (AB) Tj (C) Tj ET")
	var shows []*TextShowOp
	for _, op := range result.Ops {
		if s, ok := op.(*TextShowOp); ok {
			shows = append(shows, s)
		}
	}
	if len(shows) != 2 {
		t.Fatalf("got %d shows", len(shows))
	}
	if shows[1].TextMatrix[4] != shows[0].TextMatrix[4]+shows[0].Advance {
		t.Errorf("second run starts at %g, want %g",
			shows[1].TextMatrix[4], shows[0].TextMatrix[4]+shows[0].Advance)
	}
}

func TestCharAndWordSpacing(t *testing.T) {
	result := parseOps(t, "BT /F1 10 Tf 2 Tc 3 Tw (A B) Tj ET")
	var show *TextShowOp
	for _, op := range result.Ops {
		if s, ok := op.(*TextShowOp); ok {
			show = s
		}
	}
	if show == nil {
		t.Fatal("no text show parsed")
	}
	// A=5, space=2.5, B=5; +2 char spacing each; +3 word spacing once
	want := 5.0 + 2.5 + 5.0 + 3*2 + 3
	if math.Abs(show.Advance-want) > 1e-9 {
		t.Errorf("advance = %g, want %g", show.Advance, want)
	}
}

func TestPathFoldsIntoPaint(t *testing.T) {
	content := "100 100 m 200 200 l S"
	result := parseOps(t, content)
	if len(result.Ops) != 1 {
		t.Fatalf("got %d ops: %+v", len(result.Ops), result.Ops)
	}
	paint, ok := result.Ops[0].(*PathPaintOp)
	if !ok {
		t.Fatalf("got %T", result.Ops[0])
	}
	if paint.Kind != PaintStroke {
		t.Errorf("kind = %v", paint.Kind)
	}
	if string(paint.Raw()) != content {
		t.Errorf("raw = %q, construction must travel with the paint", paint.Raw())
	}
	if len(paint.Points) != 2 || paint.Points[1].X != 200 {
		t.Errorf("points = %+v", paint.Points)
	}
}

func TestRectanglePath(t *testing.T) {
	result := parseOps(t, "10 20 30 40 re f")
	paint, ok := result.Ops[0].(*PathPaintOp)
	if !ok {
		t.Fatalf("got %T", result.Ops[0])
	}
	if paint.Kind != PaintFill || len(paint.Points) != 4 {
		t.Fatalf("kind %v, %d points", paint.Kind, len(paint.Points))
	}
}

func TestNoPaintKind(t *testing.T) {
	result := parseOps(t, "0 0 m 10 10 l n")
	paint, ok := result.Ops[0].(*PathPaintOp)
	if !ok {
		t.Fatalf("got %T", result.Ops[0])
	}
	if paint.Kind != PaintNone {
		t.Errorf("kind = %v, want PaintNone", paint.Kind)
	}
}

func TestCTMAppliesToPath(t *testing.T) {
	result := parseOps(t, "2 0 0 2 0 0 cm 10 20 30 40 re f")
	var paint *PathPaintOp
	for _, op := range result.Ops {
		if p, ok := op.(*PathPaintOp); ok {
			paint = p
		}
	}
	if paint == nil {
		t.Fatal("no path parsed")
	}
	if paint.Points[0].X != 20 || paint.Points[0].Y != 40 {
		t.Errorf("first point = %+v, CTM not applied", paint.Points[0])
	}
}

func TestSaveRestoreScopesCTM(t *testing.T) {
	result := parseOps(t, "q 2 0 0 2 0 0 cm Q 10 0 20 0 re f")
	var paint *PathPaintOp
	for _, op := range result.Ops {
		if p, ok := op.(*PathPaintOp); ok {
			paint = p
		}
	}
	if paint == nil {
		t.Fatal("no path parsed")
	}
	if paint.Points[0].X != 10 {
		t.Errorf("point = %+v: Q did not restore the CTM", paint.Points[0])
	}
}

func TestStateOps(t *testing.T) {
	result := parseOps(t, "q BT ET Q")
	kinds := []StateKind{StateSave, StateBeginText, StateEndText, StateRestore}
	if len(result.Ops) != len(kinds) {
		t.Fatalf("got %d ops", len(result.Ops))
	}
	for i, op := range result.Ops {
		st, ok := op.(*StateOp)
		if !ok || st.Kind != kinds[i] {
			t.Errorf("op %d: %+v, want state kind %v", i, op, kinds[i])
		}
	}
}

func TestXObjectDraw(t *testing.T) {
	result := parseOps(t, "q 100 0 0 50 20 30 cm /Im0 Do Q")
	var img *ImageDrawOp
	for _, op := range result.Ops {
		if v, ok := op.(*ImageDrawOp); ok {
			img = v
		}
	}
	if img == nil {
		t.Fatal("no image draw parsed")
	}
	if img.Name != "Im0" || img.Inline {
		t.Errorf("name %q inline %v", img.Name, img.Inline)
	}
	if img.Placement[0] != 100 || img.Placement[3] != 50 || img.Placement[4] != 20 {
		t.Errorf("placement = %+v", img.Placement)
	}
}

func TestInlineImageOp(t *testing.T) {
	result := parseOps(t, "BI /W 1 /H 1 ID x EI")
	if len(result.Ops) != 1 {
		t.Fatalf("got %d ops", len(result.Ops))
	}
	img, ok := result.Ops[0].(*ImageDrawOp)
	if !ok || !img.Inline {
		t.Fatalf("got %T inline=%v", result.Ops[0], img != nil && img.Inline)
	}
}

func TestUnknownOperatorPreserved(t *testing.T) {
	content := "/GS0 gs 1 0 0 RG"
	result := parseOps(t, content)
	if len(result.Warnings) != 0 {
		t.Fatalf("warnings: %v", result.Warnings)
	}
	var raw bytes.Buffer
	for _, op := range result.Ops {
		other, ok := op.(*OtherOp)
		if !ok {
			t.Fatalf("got %T", op)
		}
		raw.Write(other.Raw())
		raw.WriteByte(' ')
	}
	if got := raw.String(); got != content+" " {
		t.Errorf("raw text = %q", got)
	}
}

func TestMalformedOperandsWarnAndPassThrough(t *testing.T) {
	result := parseOps(t, "BT (oops) Tf (x) Tj ET")
	if len(result.Warnings) == 0 {
		t.Fatal("expected a warning for Tf with a string operand")
	}
	found := false
	for _, op := range result.Ops {
		if other, ok := op.(*OtherOp); ok && other.Operator == "Tf" {
			found = true
			if string(other.Raw()) != "(oops) Tf" {
				t.Errorf("raw = %q", other.Raw())
			}
		}
	}
	if !found {
		t.Fatal("malformed Tf not preserved as passthrough")
	}
}

func TestLexicalDamagePreservesRest(t *testing.T) {
	content := "(ok) Tj (never closed"
	result := parseOps(t, content)
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings: %v", result.Warnings)
	}
	last := result.Ops[len(result.Ops)-1]
	other, ok := last.(*OtherOp)
	if !ok {
		t.Fatalf("got %T", last)
	}
	if string(other.Raw()) != "(never closed" {
		t.Errorf("raw = %q", other.Raw())
	}
}

func TestUnpaintedPathWarnsAtEOF(t *testing.T) {
	result := parseOps(t, "10 10 m 20 20 l")
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for an unpainted path")
	}
	if len(result.Ops) != 1 {
		t.Fatalf("got %d ops", len(result.Ops))
	}
	if _, ok := result.Ops[0].(*OtherOp); !ok {
		t.Fatalf("got %T", result.Ops[0])
	}
}

func TestQuotedShowAdvancesLine(t *testing.T) {
	result := parseOps(t, "BT /F1 10 Tf 14 TL 0 100 Td (A) Tj (B) ' ET")
	var shows []*TextShowOp
	for _, op := range result.Ops {
		if s, ok := op.(*TextShowOp); ok {
			shows = append(shows, s)
		}
	}
	if len(shows) != 2 {
		t.Fatalf("got %d shows", len(shows))
	}
	if got := shows[1].TextMatrix[5]; got != 100-14 {
		t.Errorf("second line y = %g, want %g", got, 100.0-14)
	}
	if got := shows[1].TextMatrix[4]; got != 0 {
		t.Errorf("second line x = %g, want carriage return to 0", got)
	}
}
