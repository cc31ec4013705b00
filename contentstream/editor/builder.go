package editor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/wudi/redact/contentstream"
	"github.com/wudi/redact/coords"
	"github.com/wudi/redact/model"
	"github.com/wudi/redact/scanner"
)

// buildStream serializes the surviving operations back into a single
// valid content stream. Unmodified operations re-emit their original
// bytes. After the survivors, one opaque filled rectangle per redaction
// area is appended inside its own save/restore pair. The output always
// has balanced q/Q and BT/ET markers: removals inside an unbalanced
// region get their missing opener or closer synthesized.
func buildStream(kept []contentstream.Op, rects []coords.Rect, fill RGB,
	pageHeight float64, res *model.Resources) ([]byte, error) {

	if err := checkFontRefs(kept, res); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	qDepth := 0
	btOpen := false

	for _, op := range kept {
		if st, ok := op.(*contentstream.StateOp); ok {
			switch st.Kind {
			case contentstream.StateSave:
				qDepth++
			case contentstream.StateRestore:
				if qDepth == 0 {
					// orphaned restore: give it a matching opener
					buf.WriteString("q\n")
					qDepth++
				}
				qDepth--
			case contentstream.StateBeginText:
				if btOpen {
					buf.WriteString("ET\n")
				}
				btOpen = true
			case contentstream.StateEndText:
				if !btOpen {
					buf.WriteString("BT\n")
				}
				btOpen = false
			}
		}
		buf.Write(op.Raw())
		if n := len(op.Raw()); n == 0 || op.Raw()[n-1] != '\n' {
			buf.WriteByte('\n')
		}
	}

	if btOpen {
		buf.WriteString("ET\n")
	}
	for qDepth > 0 {
		buf.WriteString("Q\n")
		qDepth--
	}

	for _, rect := range rects {
		doc, err := coords.DisplayToDocument(rect, pageHeight)
		if err != nil {
			return nil, fmt.Errorf("overlay rect: %w", err)
		}
		fmt.Fprintf(&buf, "q\n%s %s %s rg\n%s %s %s %s re\nf\nQ\n",
			contentstream.FormatNumber(fill.R),
			contentstream.FormatNumber(fill.G),
			contentstream.FormatNumber(fill.B),
			contentstream.FormatNumber(doc.X),
			contentstream.FormatNumber(doc.Y),
			contentstream.FormatNumber(doc.W),
			contentstream.FormatNumber(doc.H),
		)
	}

	out := buf.Bytes()
	if err := verifyBalance(out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkFontRefs ensures every font the kept content selects exists in
// the page's resource dictionary. A rebuilt stream referencing an
// undeclared font renders the page unusable, so this is surfaced as an
// error instead of silently repaired.
func checkFontRefs(kept []contentstream.Op, res *model.Resources) error {
	for _, op := range kept {
		switch v := op.(type) {
		case *contentstream.OtherOp:
			if v.Operator == "Tf" && len(v.Operands) > 0 {
				if name, ok := v.Operands[0].(contentstream.NameOperand); ok {
					if !res.HasFont(name.Value) {
						return &ResourceMissingError{Kind: "font", Name: name.Value}
					}
				}
			}
		case *contentstream.TextShowOp:
			if v.FontName != "" && !res.HasFont(v.FontName) {
				return &ResourceMissingError{Kind: "font", Name: v.FontName}
			}
		}
	}
	return nil
}

// verifyBalance re-scans the rebuilt bytes and counts block markers.
// The synthesis above should make imbalance impossible; if it ever
// fails, the whole redaction call must abort rather than write an
// invalid stream.
func verifyBalance(stream []byte) error {
	var saves, restores, begins, ends int
	sc := scanner.New(stream)
	prev := -1
	for {
		tok, err := sc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// lexical damage in passthrough spans is tolerated, but the
			// markers after it still count; keep scanning as long as the
			// scanner makes progress
			if sc.Position() == prev {
				break
			}
			prev = sc.Position()
			continue
		}
		prev = sc.Position()
		if tok.Type != scanner.TokenKeyword {
			continue
		}
		switch tok.Keyword {
		case "q":
			saves++
		case "Q":
			restores++
		case "BT":
			begins++
		case "ET":
			ends++
		}
	}
	if saves != restores || begins != ends {
		return &UnbalancedStreamError{Saves: saves, Restores: restores, Begins: begins, Ends: ends}
	}
	return nil
}
