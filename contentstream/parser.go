package contentstream

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/wudi/redact/coords"
	"github.com/wudi/redact/fonts"
	"github.com/wudi/redact/model"
	"github.com/wudi/redact/scanner"
)

// Result is the outcome of parsing one page's content bytes.
type Result struct {
	Ops      []Op
	Warnings []ParseWarning
}

// Parser turns content-stream bytes into typed operations, tracking the
// graphics state needed to resolve each operation's geometry later.
type Parser struct {
	res     *model.Resources
	metrics map[*model.Font]*fonts.Metrics
	nilFont *fonts.Metrics
}

func NewParser(res *model.Resources) *Parser {
	return &Parser{res: res, metrics: make(map[*model.Font]*fonts.Metrics)}
}

// Parse processes content (the concatenation of a page's content
// streams, in declaration order). A malformed instruction is reported as
// a warning and preserved verbatim; parsing never aborts the page.
func (p *Parser) Parse(content []byte) *Result {
	out := &Result{}
	sc := scanner.New(content)

	gs := NewGraphicsState()
	tm := coords.Identity()  // text matrix
	tlm := coords.Identity() // text line matrix

	var operands []Operand
	spanStart := -1
	var path []coords.Point
	pathStart := -1

	flushDangling := func(end int, msg string) {
		if spanStart >= 0 && spanStart < end {
			raw := content[spanStart:end]
			out.Ops = append(out.Ops, &OtherOp{opCommon: opCommon{raw: raw}})
			out.Warnings = append(out.Warnings, ParseWarning{Offset: spanStart, Message: msg})
		}
		operands = operands[:0]
		spanStart = -1
	}

	for {
		tokAnchor := sc.Position()
		tok, err := sc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Lexical damage: preserve the rest of the stream verbatim so
			// nothing is silently dropped, and stop. The scanner has already
			// advanced past the damage, so anchor at the failed token.
			start := spanStart
			if start < 0 {
				start = tokAnchor
			}
			if pathStart >= 0 && pathStart < start {
				start = pathStart
			}
			rest := bytes.TrimLeft(content[start:], "\x00\t\n\f\r ")
			if len(rest) > 0 {
				out.Ops = append(out.Ops, &OtherOp{opCommon: opCommon{raw: rest}})
			}
			out.Warnings = append(out.Warnings, ParseWarning{Offset: len(content) - len(rest), Message: err.Error()})
			return out
		}

		if spanStart < 0 {
			spanStart = tok.Pos
		}

		switch tok.Type {
		case scanner.TokenNumber:
			operands = append(operands, NumberOperand{Value: tok.Num})
			continue
		case scanner.TokenName:
			operands = append(operands, NameOperand{Value: tok.Keyword})
			continue
		case scanner.TokenString:
			operands = append(operands, StringOperand{Value: tok.Str})
			continue
		case scanner.TokenArrayOpen:
			arr, err := p.parseArray(sc)
			if err != nil {
				flushDangling(sc.Position(), err.Error())
				continue
			}
			operands = append(operands, arr)
			continue
		case scanner.TokenDictOpen:
			dict, err := p.parseDict(sc)
			if err != nil {
				flushDangling(sc.Position(), err.Error())
				continue
			}
			operands = append(operands, dict)
			continue
		case scanner.TokenArrayClose, scanner.TokenDictClose:
			flushDangling(tok.End, fmt.Sprintf("unbalanced %q at offset %d", "]", tok.Pos))
			continue
		case scanner.TokenInlineImage:
			img := &ImageDrawOp{
				opCommon:  opCommon{raw: content[tok.Pos:tok.End]},
				Placement: gs.CTM,
				Inline:    true,
			}
			out.Ops = append(out.Ops, img)
			operands = operands[:0]
			spanStart = -1
			continue
		}

		// TokenKeyword: an operator consumes the pending operands.
		op := tok.Keyword
		raw := content[spanStart:tok.End]
		emit := func(o Op) {
			out.Ops = append(out.Ops, o)
		}
		warn := func(msg string) {
			out.Warnings = append(out.Warnings, ParseWarning{
				Offset: spanStart, Operator: op, Message: msg,
			})
			emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op, Operands: append([]Operand(nil), operands...)})
		}

		switch op {
		case "q":
			gs.Save()
			emit(&StateOp{opCommon: opCommon{raw: raw}, Kind: StateSave})
		case "Q":
			gs.Restore()
			emit(&StateOp{opCommon: opCommon{raw: raw}, Kind: StateRestore})
		case "BT":
			tm = coords.Identity()
			tlm = coords.Identity()
			emit(&StateOp{opCommon: opCommon{raw: raw}, Kind: StateBeginText})
		case "ET":
			emit(&StateOp{opCommon: opCommon{raw: raw}, Kind: StateEndText})

		case "cm":
			if m, ok := operandMatrix(operands); ok {
				gs.CTM = m.Multiply(gs.CTM)
				emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op, Operands: append([]Operand(nil), operands...)})
			} else {
				warn("cm: want 6 numbers")
			}

		case "Tf":
			if len(operands) == 2 {
				name, okName := operands[0].(NameOperand)
				size, okSize := operands[1].(NumberOperand)
				if okName && okSize {
					gs.Text.FontName = name.Value
					gs.Text.FontSize = size.Value
					gs.Text.Font = nil
					if p.res != nil {
						gs.Text.Font = p.res.Fonts[name.Value]
					}
					emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op, Operands: append([]Operand(nil), operands...)})
					break
				}
			}
			warn("Tf: want name and number")
		case "Tc":
			if v, ok := oneNumber(operands); ok {
				gs.Text.CharSpacing = v
				emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op, Operands: append([]Operand(nil), operands...)})
			} else {
				warn("Tc: want 1 number")
			}
		case "Tw":
			if v, ok := oneNumber(operands); ok {
				gs.Text.WordSpacing = v
				emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op, Operands: append([]Operand(nil), operands...)})
			} else {
				warn("Tw: want 1 number")
			}
		case "Tz":
			if v, ok := oneNumber(operands); ok {
				gs.Text.HorizScale = v
				emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op, Operands: append([]Operand(nil), operands...)})
			} else {
				warn("Tz: want 1 number")
			}
		case "TL":
			if v, ok := oneNumber(operands); ok {
				gs.Text.Leading = v
				emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op, Operands: append([]Operand(nil), operands...)})
			} else {
				warn("TL: want 1 number")
			}
		case "Ts":
			if v, ok := oneNumber(operands); ok {
				gs.Text.Rise = v
				emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op, Operands: append([]Operand(nil), operands...)})
			} else {
				warn("Ts: want 1 number")
			}
		case "Tr":
			if v, ok := oneNumber(operands); ok {
				gs.Text.RenderMode = int(v)
				emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op, Operands: append([]Operand(nil), operands...)})
			} else {
				warn("Tr: want 1 number")
			}

		case "Td":
			if tx, ty, ok := twoNumbers(operands); ok {
				tlm = coords.Translate(tx, ty).Multiply(tlm)
				tm = tlm
				emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op, Operands: append([]Operand(nil), operands...)})
			} else {
				warn("Td: want 2 numbers")
			}
		case "TD":
			if tx, ty, ok := twoNumbers(operands); ok {
				gs.Text.Leading = -ty
				tlm = coords.Translate(tx, ty).Multiply(tlm)
				tm = tlm
				emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op, Operands: append([]Operand(nil), operands...)})
			} else {
				warn("TD: want 2 numbers")
			}
		case "Tm":
			if m, ok := operandMatrix(operands); ok {
				tlm = m
				tm = m
				emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op, Operands: append([]Operand(nil), operands...)})
			} else {
				warn("Tm: want 6 numbers")
			}
		case "T*":
			tlm = coords.Translate(0, -gs.Text.Leading).Multiply(tlm)
			tm = tlm
			emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op})

		case "Tj":
			if len(operands) == 1 {
				if str, ok := operands[0].(StringOperand); ok {
					show := p.makeTextShow(raw, str.Value, gs, tm)
					tm = coords.Translate(show.Advance, 0).Multiply(tm)
					emit(show)
					break
				}
			}
			warn("Tj: want 1 string")
		case "'":
			if len(operands) == 1 {
				if str, ok := operands[0].(StringOperand); ok {
					tlm = coords.Translate(0, -gs.Text.Leading).Multiply(tlm)
					tm = tlm
					show := p.makeTextShow(raw, str.Value, gs, tm)
					tm = coords.Translate(show.Advance, 0).Multiply(tm)
					emit(show)
					break
				}
			}
			warn("': want 1 string")
		case "\"":
			if len(operands) == 3 {
				aw, okA := operands[0].(NumberOperand)
				ac, okC := operands[1].(NumberOperand)
				str, okS := operands[2].(StringOperand)
				if okA && okC && okS {
					gs.Text.WordSpacing = aw.Value
					gs.Text.CharSpacing = ac.Value
					tlm = coords.Translate(0, -gs.Text.Leading).Multiply(tlm)
					tm = tlm
					show := p.makeTextShow(raw, str.Value, gs, tm)
					tm = coords.Translate(show.Advance, 0).Multiply(tm)
					emit(show)
					break
				}
			}
			warn("\": want 2 numbers and a string")
		case "TJ":
			if len(operands) == 1 {
				if arr, ok := operands[0].(ArrayOperand); ok {
					show := p.makeTextShowArray(raw, arr.Values, gs, tm)
					tm = coords.Translate(show.Advance, 0).Multiply(tm)
					emit(show)
					break
				}
			}
			warn("TJ: want 1 array")

		// Path construction accumulates into the pending path; the span
		// is attributed to the paint operator that consumes it.
		case "m", "l":
			if pathStart < 0 {
				pathStart = spanStart
			}
			if x, y, ok := twoNumbers(operands); ok {
				path = append(path, gs.CTM.Transform(coords.Point{X: x, Y: y}))
			}
		case "c":
			if pathStart < 0 {
				pathStart = spanStart
			}
			path = appendNumericPoints(path, operands, gs.CTM)
		case "v", "y":
			if pathStart < 0 {
				pathStart = spanStart
			}
			path = appendNumericPoints(path, operands, gs.CTM)
		case "re":
			if pathStart < 0 {
				pathStart = spanStart
			}
			if len(operands) == 4 {
				x := numberOr(operands[0], 0)
				y := numberOr(operands[1], 0)
				w := numberOr(operands[2], 0)
				h := numberOr(operands[3], 0)
				path = append(path,
					gs.CTM.Transform(coords.Point{X: x, Y: y}),
					gs.CTM.Transform(coords.Point{X: x + w, Y: y}),
					gs.CTM.Transform(coords.Point{X: x + w, Y: y + h}),
					gs.CTM.Transform(coords.Point{X: x, Y: y + h}),
				)
			}
		case "h":
			if pathStart < 0 {
				pathStart = spanStart
			}

		case "S", "s":
			emit(p.finishPath(content, pathStart, spanStart, tok.End, &path, PaintStroke))
			pathStart = -1
		case "f", "F", "f*":
			emit(p.finishPath(content, pathStart, spanStart, tok.End, &path, PaintFill))
			pathStart = -1
		case "B", "B*", "b", "b*":
			emit(p.finishPath(content, pathStart, spanStart, tok.End, &path, PaintFillStroke))
			pathStart = -1
		case "n":
			emit(p.finishPath(content, pathStart, spanStart, tok.End, &path, PaintNone))
			pathStart = -1

		case "Do":
			if len(operands) == 1 {
				if name, ok := operands[0].(NameOperand); ok {
					emit(&ImageDrawOp{
						opCommon:  opCommon{raw: raw},
						Name:      name.Value,
						Placement: gs.CTM,
					})
					break
				}
			}
			warn("Do: want 1 name")

		default:
			emit(&OtherOp{opCommon: opCommon{raw: raw}, Operator: op, Operands: append([]Operand(nil), operands...)})
		}

		operands = operands[:0]
		spanStart = -1
	}

	if spanStart >= 0 && len(operands) > 0 {
		flushDangling(len(content), fmt.Sprintf("dangling operands: %d", len(operands)))
	}
	if pathStart >= 0 {
		// unconsumed path construction at end of stream
		out.Ops = append(out.Ops, &OtherOp{opCommon: opCommon{raw: content[pathStart:]}})
		out.Warnings = append(out.Warnings, ParseWarning{Offset: pathStart, Message: "path never painted"})
	}
	return out
}

// finishPath emits the PathPaintOp for an accumulated path. Its raw span
// starts at the first construction operator so the geometry travels with
// the paint instruction.
func (p *Parser) finishPath(content []byte, pathStart, spanStart, end int, path *[]coords.Point, kind PaintKind) Op {
	start := spanStart
	if pathStart >= 0 && pathStart < start {
		start = pathStart
	}
	pts := append([]coords.Point(nil), (*path)...)
	*path = (*path)[:0]
	return &PathPaintOp{
		opCommon: opCommon{raw: content[start:end]},
		Points:   pts,
		Kind:     kind,
	}
}

func (p *Parser) metricsFor(f *model.Font) *fonts.Metrics {
	if f == nil {
		if p.nilFont == nil {
			p.nilFont = fonts.For(nil)
		}
		return p.nilFont
	}
	m, ok := p.metrics[f]
	if !ok {
		m = fonts.For(f)
		p.metrics[f] = m
	}
	return m
}

func (p *Parser) makeTextShow(raw, text []byte, gs *GraphicsState, tm coords.Matrix) *TextShowOp {
	adv := p.runAdvance(text, gs, 0)
	return &TextShowOp{
		opCommon:   opCommon{raw: raw},
		Text:       append([]byte(nil), text...),
		Decoded:    fonts.Decode(gs.Text.Font, text),
		FontName:   gs.Text.FontName,
		Font:       gs.Text.Font,
		FontSize:   gs.Text.FontSize,
		Advance:    adv,
		Rise:       gs.Text.Rise,
		TextMatrix: tm,
		CTM:        gs.CTM,
	}
}

// makeTextShowArray handles the TJ "strings and kerns" form. The cursor
// advances per element exactly as the rendering model defines, so the
// whole run gets one bbox.
func (p *Parser) makeTextShowArray(raw []byte, items []Operand, gs *GraphicsState, tm coords.Matrix) *TextShowOp {
	var text []byte
	var adv float64
	for _, it := range items {
		switch v := it.(type) {
		case StringOperand:
			text = append(text, v.Value...)
			adv += p.runAdvance(v.Value, gs, 0)
		case NumberOperand:
			// kern: thousandths of text-space units, subtracted
			adv -= v.Value / 1000 * gs.Text.FontSize * gs.Text.HorizScale / 100
		}
	}
	return &TextShowOp{
		opCommon:   opCommon{raw: raw},
		Text:       text,
		Decoded:    fonts.Decode(gs.Text.Font, text),
		FontName:   gs.Text.FontName,
		Font:       gs.Text.Font,
		FontSize:   gs.Text.FontSize,
		Advance:    adv,
		Rise:       gs.Text.Rise,
		TextMatrix: tm,
		CTM:        gs.CTM,
	}
}

// runAdvance computes the text-space displacement of showing codes.
func (p *Parser) runAdvance(codes []byte, gs *GraphicsState, kern float64) float64 {
	m := p.metricsFor(gs.Text.Font)
	th := gs.Text.HorizScale / 100
	var adv float64
	for _, c := range codes {
		w := m.Advance(int(c)) / 1000 * gs.Text.FontSize
		adv += w + gs.Text.CharSpacing
		if c == ' ' {
			adv += gs.Text.WordSpacing
		}
	}
	adv -= kern / 1000 * gs.Text.FontSize
	return adv * th
}

func (p *Parser) parseArray(sc *scanner.Scanner) (ArrayOperand, error) {
	var out ArrayOperand
	for {
		tok, err := sc.Next()
		if err != nil {
			return out, fmt.Errorf("unterminated array: %w", err)
		}
		switch tok.Type {
		case scanner.TokenArrayClose:
			return out, nil
		case scanner.TokenNumber:
			out.Values = append(out.Values, NumberOperand{Value: tok.Num})
		case scanner.TokenName:
			out.Values = append(out.Values, NameOperand{Value: tok.Keyword})
		case scanner.TokenString:
			out.Values = append(out.Values, StringOperand{Value: tok.Str})
		case scanner.TokenArrayOpen:
			inner, err := p.parseArray(sc)
			if err != nil {
				return out, err
			}
			out.Values = append(out.Values, inner)
		case scanner.TokenDictOpen:
			inner, err := p.parseDict(sc)
			if err != nil {
				return out, err
			}
			out.Values = append(out.Values, inner)
		default:
			return out, fmt.Errorf("unexpected token in array at offset %d", tok.Pos)
		}
	}
}

func (p *Parser) parseDict(sc *scanner.Scanner) (DictOperand, error) {
	out := DictOperand{Values: make(map[string]Operand)}
	for {
		keyTok, err := sc.Next()
		if err != nil {
			return out, fmt.Errorf("unterminated dict: %w", err)
		}
		if keyTok.Type == scanner.TokenDictClose {
			return out, nil
		}
		if keyTok.Type != scanner.TokenName {
			return out, fmt.Errorf("dict key is not a name at offset %d", keyTok.Pos)
		}
		valTok, err := sc.Next()
		if err != nil {
			return out, fmt.Errorf("unterminated dict: %w", err)
		}
		switch valTok.Type {
		case scanner.TokenNumber:
			out.Values[keyTok.Keyword] = NumberOperand{Value: valTok.Num}
		case scanner.TokenName:
			out.Values[keyTok.Keyword] = NameOperand{Value: valTok.Keyword}
		case scanner.TokenString:
			out.Values[keyTok.Keyword] = StringOperand{Value: valTok.Str}
		case scanner.TokenArrayOpen:
			inner, err := p.parseArray(sc)
			if err != nil {
				return out, err
			}
			out.Values[keyTok.Keyword] = inner
		case scanner.TokenDictOpen:
			inner, err := p.parseDict(sc)
			if err != nil {
				return out, err
			}
			out.Values[keyTok.Keyword] = inner
		case scanner.TokenKeyword:
			// true/false/null: no dedicated operand type needed
			out.Values[keyTok.Keyword] = NameOperand{Value: valTok.Keyword}
		default:
			return out, fmt.Errorf("unexpected dict value at offset %d", valTok.Pos)
		}
	}
}

func operandMatrix(ops []Operand) (coords.Matrix, bool) {
	if len(ops) != 6 {
		return coords.Matrix{}, false
	}
	var m coords.Matrix
	for i, op := range ops {
		n, ok := op.(NumberOperand)
		if !ok {
			return coords.Matrix{}, false
		}
		m[i] = n.Value
	}
	return m, true
}

func oneNumber(ops []Operand) (float64, bool) {
	if len(ops) != 1 {
		return 0, false
	}
	n, ok := ops[0].(NumberOperand)
	if !ok || math.IsNaN(n.Value) {
		return 0, false
	}
	return n.Value, true
}

func twoNumbers(ops []Operand) (float64, float64, bool) {
	if len(ops) != 2 {
		return 0, 0, false
	}
	a, okA := ops[0].(NumberOperand)
	b, okB := ops[1].(NumberOperand)
	if !okA || !okB {
		return 0, 0, false
	}
	return a.Value, b.Value, true
}

func numberOr(op Operand, fallback float64) float64 {
	if n, ok := op.(NumberOperand); ok {
		return n.Value
	}
	return fallback
}

// appendNumericPoints collects coordinate pairs from curve operands,
// mapped through the CTM. Control points are included: they bound the
// curve, which is what selection needs.
func appendNumericPoints(path []coords.Point, ops []Operand, ctm coords.Matrix) []coords.Point {
	var nums []float64
	for _, op := range ops {
		if n, ok := op.(NumberOperand); ok {
			nums = append(nums, n.Value)
		}
	}
	for i := 0; i+1 < len(nums); i += 2 {
		path = append(path, ctm.Transform(coords.Point{X: nums[i], Y: nums[i+1]}))
	}
	return path
}
