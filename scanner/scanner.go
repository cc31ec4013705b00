// Package scanner tokenizes page content streams according to the PDF
// lexical rules: whitespace and delimiter classes, comments, literal
// strings with escapes and balanced parentheses, hex strings, names
// with #xx escapes, numbers, arrays, dictionaries and inline-image
// sections. Every token records the byte range it was read from so
// callers can re-emit source text verbatim.
package scanner

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

type TokenType int

const (
	TokenNumber      TokenType = iota // numeric value
	TokenName                         // '/Name'
	TokenString                       // literal or hex string (decoded bytes)
	TokenArrayOpen                    // '['
	TokenArrayClose                   // ']'
	TokenDictOpen                     // '<<'
	TokenDictClose                    // '>>'
	TokenInlineImage                  // 'BI ... ID <data> EI'
	TokenKeyword                      // operators and true/false/null
)

// Token is one lexical unit of a content stream. Pos and End delimit
// the source bytes the token was read from (End exclusive).
type Token struct {
	Type TokenType
	Pos  int
	End  int

	Num     float64 // TokenNumber
	Str     []byte  // TokenString (decoded), TokenInlineImage (raw data)
	Keyword string  // TokenKeyword, TokenName (without the slash)
}

// Scanner walks an in-memory content stream. Content streams are small
// and already decoded, so no windowed reads are needed here.
type Scanner struct {
	data []byte
	pos  int
}

func New(data []byte) *Scanner { return &Scanner{data: data} }

// Position returns the current byte offset.
func (s *Scanner) Position() int { return s.pos }

// Next returns the next token, or io.EOF at end of input.
func (s *Scanner) Next() (Token, error) {
	s.skipWSAndComments()
	if s.pos >= len(s.data) {
		return Token{}, io.EOF
	}
	start := s.pos
	c := s.data[s.pos]
	switch {
	case c == '<':
		if s.peek(1) == '<' {
			s.pos += 2
			return Token{Type: TokenDictOpen, Pos: start, End: s.pos}, nil
		}
		return s.scanHexString()
	case c == '>':
		if s.peek(1) == '>' {
			s.pos += 2
			return Token{Type: TokenDictClose, Pos: start, End: s.pos}, nil
		}
		s.pos++
		return Token{Type: TokenKeyword, Keyword: ">", Pos: start, End: s.pos}, nil
	case c == '[':
		s.pos++
		return Token{Type: TokenArrayOpen, Pos: start, End: s.pos}, nil
	case c == ']':
		s.pos++
		return Token{Type: TokenArrayClose, Pos: start, End: s.pos}, nil
	case c == '(':
		return s.scanLiteralString()
	case c == '/':
		return s.scanName()
	case isNumberStart(c):
		return s.scanNumber()
	}
	return s.scanKeyword()
}

// whitespace class: null, tab, LF, FF, CR, space.
func isWhitespace(c byte) bool {
	return c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool { return !isWhitespace(c) && !isDelimiter(c) }

func isNumberStart(c byte) bool {
	return c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9')
}

func (s *Scanner) peek(ahead int) byte {
	if s.pos+ahead >= len(s.data) {
		return 0
	}
	return s.data[s.pos+ahead]
}

func (s *Scanner) skipWSAndComments() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if isWhitespace(c) {
			s.pos++
			continue
		}
		if c == '%' {
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
			continue
		}
		return
	}
}

func (s *Scanner) scanNumber() (Token, error) {
	start := s.pos
	for s.pos < len(s.data) && isRegular(s.data[s.pos]) {
		s.pos++
	}
	text := string(s.data[start:s.pos])
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, fmt.Errorf("malformed number %q at offset %d", text, start)
	}
	return Token{Type: TokenNumber, Num: v, Pos: start, End: s.pos}, nil
}

func (s *Scanner) scanName() (Token, error) {
	start := s.pos
	s.pos++ // '/'
	var out bytes.Buffer
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if !isRegular(c) {
			break
		}
		if c == '#' && s.pos+2 < len(s.data) {
			hi, ok1 := hexVal(s.data[s.pos+1])
			lo, ok2 := hexVal(s.data[s.pos+2])
			if ok1 && ok2 {
				out.WriteByte(hi<<4 | lo)
				s.pos += 3
				continue
			}
		}
		out.WriteByte(c)
		s.pos++
	}
	return Token{Type: TokenName, Keyword: out.String(), Pos: start, End: s.pos}, nil
}

func (s *Scanner) scanLiteralString() (Token, error) {
	start := s.pos
	s.pos++ // '('
	var out bytes.Buffer
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch c {
		case '\\':
			s.pos++
			if s.pos >= len(s.data) {
				return Token{}, fmt.Errorf("unterminated string at offset %d", start)
			}
			e := s.data[s.pos]
			switch e {
			case 'n':
				out.WriteByte('\n')
			case 'r':
				out.WriteByte('\r')
			case 't':
				out.WriteByte('\t')
			case 'b':
				out.WriteByte('\b')
			case 'f':
				out.WriteByte('\f')
			case '(', ')', '\\':
				out.WriteByte(e)
			case '\r':
				// line continuation; swallow optional LF
				if s.peek(1) == '\n' {
					s.pos++
				}
			case '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for k := 0; k < 2; k++ {
						n := s.peek(1)
						if n < '0' || n > '7' {
							break
						}
						v = v*8 + int(n-'0')
						s.pos++
					}
					out.WriteByte(byte(v))
				} else {
					out.WriteByte(e)
				}
			}
			s.pos++
		case '(':
			depth++
			out.WriteByte(c)
			s.pos++
		case ')':
			depth--
			s.pos++
			if depth == 0 {
				return Token{Type: TokenString, Str: out.Bytes(), Pos: start, End: s.pos}, nil
			}
			out.WriteByte(c)
		default:
			out.WriteByte(c)
			s.pos++
		}
	}
	return Token{}, fmt.Errorf("unterminated string at offset %d", start)
}

func (s *Scanner) scanHexString() (Token, error) {
	start := s.pos
	s.pos++ // '<'
	var out bytes.Buffer
	var hi byte
	haveHi := false
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '>' {
			s.pos++
			if haveHi {
				// odd digit count: the last digit gets a trailing zero
				out.WriteByte(hi << 4)
			}
			return Token{Type: TokenString, Str: out.Bytes(), Pos: start, End: s.pos}, nil
		}
		if v, ok := hexVal(c); ok {
			if haveHi {
				out.WriteByte(hi<<4 | v)
				haveHi = false
			} else {
				hi = v
				haveHi = true
			}
		} else if !isWhitespace(c) {
			return Token{}, fmt.Errorf("bad hex digit %q at offset %d", c, s.pos)
		}
		s.pos++
	}
	return Token{}, fmt.Errorf("unterminated hex string at offset %d", start)
}

func (s *Scanner) scanKeyword() (Token, error) {
	start := s.pos
	for s.pos < len(s.data) && isRegular(s.data[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		// lone delimiter we do not otherwise handle ({ or })
		s.pos++
		return Token{Type: TokenKeyword, Keyword: string(s.data[start:s.pos]), Pos: start, End: s.pos}, nil
	}
	kw := string(s.data[start:s.pos])
	if kw == "BI" {
		return s.scanInlineImage(start)
	}
	return Token{Type: TokenKeyword, Keyword: kw, Pos: start, End: s.pos}, nil
}

// scanInlineImage consumes from BI through the EI terminator. The image
// dictionary tokens are skipped; the binary payload after ID is captured
// raw so the section can be re-emitted or dropped as a unit.
func (s *Scanner) scanInlineImage(start int) (Token, error) {
	// skip dictionary entries up to the ID keyword
	for {
		s.skipWSAndComments()
		if s.pos >= len(s.data) {
			return Token{}, fmt.Errorf("unterminated inline image at offset %d", start)
		}
		if s.data[s.pos] == 'I' && s.peek(1) == 'D' &&
			(s.pos+2 >= len(s.data) || !isRegular(s.data[s.pos+2])) {
			s.pos += 2
			break
		}
		s.pos++
	}
	// one whitespace byte separates ID from the data
	if s.pos < len(s.data) && isWhitespace(s.data[s.pos]) {
		s.pos++
	}
	dataStart := s.pos
	for s.pos < len(s.data) {
		if s.data[s.pos] == 'E' && s.peek(1) == 'I' &&
			(s.pos == 0 || isWhitespace(s.data[s.pos-1])) &&
			(s.pos+2 >= len(s.data) || !isRegular(s.data[s.pos+2])) {
			end := s.pos
			if end > dataStart && isWhitespace(s.data[end-1]) {
				end-- // the byte before EI delimits, it is not image data
			}
			data := s.data[dataStart:end]
			s.pos += 2
			return Token{Type: TokenInlineImage, Str: data, Pos: start, End: s.pos}, nil
		}
		s.pos++
	}
	return Token{}, fmt.Errorf("unterminated inline image at offset %d", start)
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
