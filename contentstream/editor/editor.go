// Package editor removes content under caller-supplied rectangles from
// a page's instruction stream. Removal is structural: selected
// operations do not survive in any content stream of the page, the
// rebuilt stream stays syntactically balanced, and positional traces of
// what was removed are normalized away.
package editor

import (
	"context"
	"fmt"

	"github.com/wudi/redact/coords"
	"github.com/wudi/redact/model"
)

// Area is one redaction request: a display-space rectangle on a page.
type Area struct {
	PageIndex int
	Rect      coords.Rect // SpaceDisplay
}

// Editor is the public entry point of the redaction pipeline.
type Editor interface {
	// RedactArea removes everything under rect on one page. rect may be
	// in display points or in device pixels (carrying its DPI).
	RedactArea(ctx context.Context, doc *model.Document, pageIndex int, rect coords.Rect) error

	// RedactWithOptions applies a batch of areas, possibly spanning
	// several pages, under the given options. The batch is atomic per
	// page: on failure the page keeps its original content.
	RedactWithOptions(ctx context.Context, doc *model.Document, areas []Area, opts Options) error
}

// SpatialIndex indexes operations by display-space bounding box.
type SpatialIndex interface {
	Insert(rect coords.Rect, index int)
	Query(rect coords.Rect) []int
}

// UnbalancedStreamError reports that the rebuilt stream could not be
// balanced. It aborts the redaction call; the page is left untouched.
type UnbalancedStreamError struct {
	Saves, Restores int
	Begins, Ends    int
}

func (e *UnbalancedStreamError) Error() string {
	return fmt.Sprintf("rebuilt stream unbalanced: %d q / %d Q, %d BT / %d ET",
		e.Saves, e.Restores, e.Begins, e.Ends)
}

// ResourceMissingError reports that kept content references a resource
// the page does not declare. It is surfaced rather than auto-repaired:
// substituting a font would change rendering silently.
type ResourceMissingError struct {
	Kind string
	Name string
}

func (e *ResourceMissingError) Error() string {
	return fmt.Sprintf("kept content references undeclared %s resource %q", e.Kind, e.Name)
}

// InvalidAreaError describes a rectangle with non-positive extent. Such
// areas are skipped as no-ops so batch calls stay robust; the type
// exists for callers that want to log them.
type InvalidAreaError struct {
	Area Area
}

func (e *InvalidAreaError) Error() string {
	return fmt.Sprintf("redaction area on page %d has non-positive extent (%gx%g)",
		e.Area.PageIndex, e.Area.Rect.W, e.Area.Rect.H)
}
