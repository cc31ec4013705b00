// Package model holds the in-memory document structures the redaction
// core reads and mutates. Loading and serializing the container format
// is owned by the caller; the types here are the interface boundary.
package model

import "github.com/wudi/redact/coords"

// Document is the portion of a PDF the redaction core touches: pages,
// the /Info dictionary and the outline tree.
type Document struct {
	Pages    []*Page
	Info     *DocumentInfo
	Outlines []OutlineItem
}

// Page models a single page. MediaBox is in document points.
type Page struct {
	Index     int
	MediaBox  coords.Rect
	Resources *Resources
	Contents  []ContentStream
}

// Width returns the page width in document points.
func (p *Page) Width() float64 { return p.MediaBox.W }

// Height returns the page height in document points.
func (p *Page) Height() float64 { return p.MediaBox.H }

// ContentStream is one content-stream object belonging to a page. A page
// may carry several; their concatenation in declaration order forms the
// page's instruction stream.
type ContentStream struct {
	RawBytes []byte
}

// Resources holds the per-page resource dictionary entries the core
// needs: fonts by resource name, XObjects by resource name.
type Resources struct {
	Fonts    map[string]*Font
	XObjects map[string]XObject
}

// HasFont reports whether the resource dictionary declares name.
func (r *Resources) HasFont(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.Fonts[name]
	return ok
}

// Font represents a font resource. Widths maps character codes to glyph
// advances in 1/1000 em, as declared by the /Widths array.
type Font struct {
	Subtype    string // Type1, TrueType, Type0, Type3
	BaseFont   string
	Encoding   string
	Widths     map[int]float64
	ToUnicode  map[int]rune
	Descriptor *FontDescriptor
}

// FontDescriptor carries the metric and program fields used for bounds
// calculation. Ascent/Descent are in 1/1000 em; Descent is negative.
type FontDescriptor struct {
	Ascent       float64
	Descent      float64
	MissingWidth float64
	FontFile     []byte // embedded TrueType/OpenType program, if any
}

// XObject is an external object referenced by a Do operator.
type XObject struct {
	Subtype string // "Image" or "Form"
	Width   int
	Height  int
}

// DocumentInfo models /Info dictionary values.
type DocumentInfo struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
	Keywords []string
}

// OutlineItem describes a bookmark entry.
type OutlineItem struct {
	Title     string
	PageIndex int
	Children  []OutlineItem
}
