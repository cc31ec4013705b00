package editor

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wudi/redact/contentstream"
	"github.com/wudi/redact/coords"
	"github.com/wudi/redact/metadata"
	"github.com/wudi/redact/model"
	"github.com/wudi/redact/observability"
)

// EditorImpl drives the pipeline: parse, trace, select, normalize,
// rebuild, consolidate. It owns no document state; the terms log is the
// only thing that outlives a call, by design, so a later metadata pass
// can scrub what earlier content passes removed.
type EditorImpl struct {
	terms *TermsLog
}

var _ Editor = (*EditorImpl)(nil)

// NewEditor returns an editor recording removed terms into log. A nil
// log gets a fresh one.
func NewEditor(log *TermsLog) *EditorImpl {
	if log == nil {
		log = NewTermsLog()
	}
	return &EditorImpl{terms: log}
}

// Terms exposes the session's removed-terms log.
func (e *EditorImpl) Terms() *TermsLog { return e.terms }

// RedactArea removes everything under rect on one page with default
// options. The rect may be in display points, device pixels (carrying
// its DPI) or document points.
func (e *EditorImpl) RedactArea(ctx context.Context, doc *model.Document, pageIndex int, rect coords.Rect) error {
	return e.RedactWithOptions(ctx, doc, []Area{{PageIndex: pageIndex, Rect: rect}}, DefaultOptions())
}

// RedactWithOptions applies a batch of areas atomically. Every page's
// rebuilt stream is staged first; pages are only replaced once the
// whole batch succeeded, so callers never observe a half-redacted
// document.
func (e *EditorImpl) RedactWithOptions(ctx context.Context, doc *model.Document, areas []Area, opts Options) error {
	if doc == nil {
		return fmt.Errorf("nil document")
	}
	log := opts.logger()

	perPage, err := groupAreas(doc, areas, log)
	if err != nil {
		return err
	}

	staged := make(map[int][]byte, len(perPage))
	for pageIndex, rects := range perPage {
		if err := ctx.Err(); err != nil {
			return err
		}
		page := doc.Pages[pageIndex]
		stream, err := e.redactPage(ctx, page, rects, &opts, log)
		if err != nil {
			return fmt.Errorf("page %d: %w", pageIndex, err)
		}
		staged[pageIndex] = stream
	}

	// commit: consolidation replaces all of a page's content streams
	// with the single rebuilt one
	for pageIndex, stream := range staged {
		doc.Pages[pageIndex].Contents = []model.ContentStream{{RawBytes: stream}}
	}

	if opts.RemoveAllMetadata {
		metadata.RemoveAllMetadata(doc)
	} else if opts.SanitizeMetadata {
		metadata.SanitizeDocument(doc, e.terms.Terms())
	}
	return nil
}

// redactPage runs the per-page pipeline and returns the rebuilt stream
// without touching the page.
func (e *EditorImpl) redactPage(ctx context.Context, page *model.Page, rects []coords.Rect,
	opts *Options, log observability.Logger) ([]byte, error) {

	content := concatStreams(page.Contents)
	parser := contentstream.NewParser(page.Resources)
	result := parser.Parse(content)
	for _, w := range result.Warnings {
		log.Warn("content stream instruction preserved as passthrough",
			observability.Int("page", page.Index),
			observability.Int("offset", w.Offset),
			observability.String("reason", w.Message))
	}

	tracer := contentstream.NewTracer(page.Height())
	tracer.Trace(result.Ops)

	pageBounds := coords.DisplayRect(0, 0, page.Width(), page.Height())
	removed, err := selectRemoved(ctx, result.Ops, rects, pageBounds, opts, page.Index, e.terms)
	if err != nil {
		return nil, err
	}

	kept := normalizeOps(result.Ops, removed, opts)

	stream, err := buildStream(kept, rects, opts.FillColor, page.Height(), page.Resources)
	if err != nil {
		return nil, err
	}

	log.Info("page redacted",
		observability.Int("page", page.Index),
		observability.Int("areas", len(rects)),
		observability.Int("operations", len(result.Ops)),
		observability.Int("removed", len(removed)))
	return stream, nil
}

// groupAreas validates the batch and converts every rect to display
// space on its page. Degenerate rects are skipped as no-ops.
func groupAreas(doc *model.Document, areas []Area, log observability.Logger) (map[int][]coords.Rect, error) {
	out := make(map[int][]coords.Rect)
	for _, area := range areas {
		if area.PageIndex < 0 || area.PageIndex >= len(doc.Pages) {
			return nil, fmt.Errorf("redaction area references page %d of %d", area.PageIndex, len(doc.Pages))
		}
		if area.Rect.Empty() {
			log.Warn("skipping degenerate redaction area",
				observability.Int("page", area.PageIndex),
				observability.Error("reason", &InvalidAreaError{Area: area}))
			continue
		}
		page := doc.Pages[area.PageIndex]
		disp, err := toDisplay(area.Rect, page.Height())
		if err != nil {
			return nil, err
		}
		out[area.PageIndex] = append(out[area.PageIndex], disp)
	}
	return out, nil
}

func toDisplay(r coords.Rect, pageHeight float64) (coords.Rect, error) {
	switch r.Space {
	case coords.SpaceDisplay:
		return r, nil
	case coords.SpaceDevice:
		return coords.DeviceToDisplay(r)
	case coords.SpaceDocument:
		return coords.DocumentToDisplay(r, pageHeight)
	}
	return coords.Rect{}, fmt.Errorf("rect in unknown space %d", int(r.Space))
}

// concatStreams joins a page's content streams in declaration order.
// The format defines the page description as their concatenation with
// whitespace between.
func concatStreams(streams []model.ContentStream) []byte {
	if len(streams) == 1 {
		return streams[0].RawBytes
	}
	var buf bytes.Buffer
	for _, s := range streams {
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(s.RawBytes)
	}
	return buf.Bytes()
}
