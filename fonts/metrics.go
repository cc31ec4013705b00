// Package fonts resolves the glyph metrics the bounds calculator needs:
// per-code advance widths and the vertical extent of a font. Widths come
// from the font's /Widths array when declared; otherwise the embedded
// font program is shaped with go-text/typesetting; otherwise standard-14
// defaults apply.
package fonts

import (
	"bytes"
	"strings"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/redact/model"
)

// Metrics carries font measurements in 1/1000 em units.
type Metrics struct {
	Ascent       float64
	Descent      float64 // negative
	widths       map[int]float64
	faceAdvances map[rune]float64
	defaultWidth float64
}

// Helvetica-like defaults used when a font declares nothing.
const (
	defaultAscent  = 718
	defaultDescent = -207
	defaultWidth   = float64(500)
	courierWidth   = float64(600)
)

// For resolves metrics for f. A nil font yields usable defaults so the
// tracer can still produce a conservative bbox.
func For(f *model.Font) *Metrics {
	m := &Metrics{
		Ascent:       defaultAscent,
		Descent:      defaultDescent,
		defaultWidth: defaultWidth,
	}
	if f == nil {
		return m
	}
	if isFixedPitch(f.BaseFont) {
		m.defaultWidth = courierWidth
	}
	if f.Descriptor != nil {
		if f.Descriptor.Ascent != 0 {
			m.Ascent = f.Descriptor.Ascent
		}
		if f.Descriptor.Descent != 0 {
			m.Descent = f.Descriptor.Descent
		}
		if f.Descriptor.MissingWidth != 0 {
			m.defaultWidth = f.Descriptor.MissingWidth
		}
	}
	if len(f.Widths) > 0 {
		m.widths = f.Widths
	}
	if f.Descriptor != nil && len(f.Descriptor.FontFile) > 0 {
		m.loadFace(f.Descriptor.FontFile)
	}
	return m
}

// Advance returns the advance width for a character code in 1/1000 em.
func (m *Metrics) Advance(code int) float64 {
	if w, ok := m.widths[code]; ok {
		return w
	}
	// single-byte codes are close enough to Latin-1 for face lookup
	if w, ok := m.faceAdvances[rune(code)]; ok {
		return w
	}
	return m.defaultWidth
}

// StringWidth sums the advances of a byte string in 1/1000 em.
func (m *Metrics) StringWidth(codes []byte) float64 {
	var w float64
	for _, c := range codes {
		w += m.Advance(int(c))
	}
	return w
}

// loadFace shapes the Latin-1 range through the embedded font program,
// normalized to 1000 units per em like the rest of the metrics.
func (m *Metrics) loadFace(program []byte) {
	face, err := gofont.ParseTTF(bytes.NewReader(program))
	if err != nil {
		return
	}
	shaper := &shaping.HarfbuzzShaper{}
	runes := make([]rune, 0, 0x5F)
	for r := rune(0x20); r < 0x7F; r++ {
		runes = append(runes, r)
	}
	out := shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      fixed.Int26_6(1000 * 64),
		Script:    language.Latin,
		Language:  language.DefaultLanguage(),
	})
	adv := make(map[rune]float64, len(out.Glyphs))
	for _, g := range out.Glyphs {
		if g.ClusterIndex < len(runes) {
			r := runes[g.ClusterIndex]
			if _, seen := adv[r]; !seen {
				adv[r] = float64(g.XAdvance) / 64.0
			}
		}
	}
	if len(adv) > 0 {
		m.faceAdvances = adv
	}
	if out.LineBounds.Ascent != 0 || out.LineBounds.Descent != 0 {
		m.Ascent = float64(out.LineBounds.Ascent) / 64.0
		m.Descent = float64(out.LineBounds.Descent) / 64.0
	}
}

func isFixedPitch(baseFont string) bool {
	return strings.Contains(strings.ToLower(baseFont), "courier") ||
		strings.Contains(strings.ToLower(baseFont), "mono")
}

// Decode converts a show-operator byte string to readable text using the
// font's ToUnicode map when present, falling back to Latin-1. Used to
// record what a removed operation said, never for rendering.
func Decode(f *model.Font, codes []byte) string {
	var b strings.Builder
	for _, c := range codes {
		if f != nil {
			if r, ok := f.ToUnicode[int(c)]; ok {
				b.WriteRune(r)
				continue
			}
		}
		b.WriteRune(rune(c))
	}
	return b.String()
}
