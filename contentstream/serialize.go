package contentstream

import (
	"bytes"
	"sort"
	"strconv"
	"strings"
)

// Serialization of freshly generated instructions. Parsed instructions
// re-emit their raw source bytes instead; these helpers are only for
// operations the pipeline synthesizes (overlays, rewritten positioning,
// coalesced runs).

// FormatNumber renders a number in minimal fixed-point form. Content
// streams have no exponent syntax, so 'f' formatting is mandatory;
// six decimals keep sub-point precision and trailing zeros are cut.
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-0" || s == "-" {
		return "0"
	}
	return s
}

// SerializeOp renders "operand… operator" followed by a newline.
func SerializeOp(operator string, operands ...Operand) []byte {
	var buf bytes.Buffer
	for i, op := range operands {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.Write(SerializeOperand(op))
	}
	if len(operands) > 0 {
		buf.WriteByte(' ')
	}
	buf.WriteString(operator)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// SerializeOperand renders one operand in content-stream syntax.
func SerializeOperand(op Operand) []byte {
	switch v := op.(type) {
	case NumberOperand:
		return []byte(FormatNumber(v.Value))
	case NameOperand:
		return []byte("/" + v.Value)
	case StringOperand:
		return EscapeString(v.Value)
	case ArrayOperand:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, it := range v.Values {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.Write(SerializeOperand(it))
		}
		buf.WriteByte(']')
		return buf.Bytes()
	case DictOperand:
		var buf bytes.Buffer
		buf.WriteString("<<")
		keys := make([]string, 0, len(v.Values))
		for k := range v.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			buf.WriteString("/" + k + " ")
			buf.Write(SerializeOperand(v.Values[k]))
		}
		buf.WriteString(">>")
		return buf.Bytes()
	default:
		return []byte("null")
	}
}

// EscapeString renders bytes as a literal string with the required
// escapes.
func EscapeString(raw []byte) []byte {
	var b bytes.Buffer
	b.WriteByte('(')
	for _, ch := range raw {
		switch ch {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		case '\b':
			b.WriteString("\\b")
		case '\f':
			b.WriteString("\\f")
		default:
			b.WriteByte(ch)
		}
	}
	b.WriteByte(')')
	return b.Bytes()
}
