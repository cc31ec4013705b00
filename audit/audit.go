// Package audit scores a redacted page for residual positional leakage.
// It is the read-only counterpart of the position normalizer: it never
// mutates the document, and is meant to run after redaction or inside
// tests as a verification step.
package audit

import (
	"fmt"
	"math"
	"sort"

	"github.com/wudi/redact/contentstream"
	"github.com/wudi/redact/coords"
	"github.com/wudi/redact/model"
)

// Area mirrors a redaction request for auditing: a display-space rect
// on a page.
type Area struct {
	PageIndex int
	Rect      coords.Rect
}

// Finding is the per-area result.
type Finding struct {
	Area    Area
	Score   float64 // [0,1]; higher = more revealing
	Gaps    int     // number of sampled gaps
	Comment string
}

// LeakageReport summarizes the residual risk of a set of redactions.
type LeakageReport struct {
	OverallRiskScore float64 // max over findings, clamped to [0,1]
	Findings         []Finding
	Recommendations  []string
}

// Analyzer computes leakage reports. RiskThreshold controls when a
// finding produces a recommendation; it is a tunable, defaulting to
// DefaultRiskThreshold.
type Analyzer struct {
	RiskThreshold float64
}

const DefaultRiskThreshold = 0.5

// gap sizes are bucketed at this granularity before the entropy
// calculation, so float noise does not inflate the distribution
const gapBucket = 0.5

func NewAnalyzer() *Analyzer {
	return &Analyzer{RiskThreshold: DefaultRiskThreshold}
}

// Analyze parses each referenced page and scores the horizontal gaps of
// the operations bordering each redaction area. Uniform gaps carry no
// information about what was removed; a spread of distinct gap widths
// does.
func (a *Analyzer) Analyze(doc *model.Document, areas []Area) (*LeakageReport, error) {
	report := &LeakageReport{}
	type pageOps struct {
		ops []contentstream.Op
	}
	cache := make(map[int]*pageOps)

	for _, area := range areas {
		if area.PageIndex < 0 || area.PageIndex >= len(doc.Pages) {
			return nil, fmt.Errorf("audit area references page %d of %d", area.PageIndex, len(doc.Pages))
		}
		page := doc.Pages[area.PageIndex]
		cached, ok := cache[area.PageIndex]
		if !ok {
			var content []byte
			for _, s := range page.Contents {
				content = append(content, s.RawBytes...)
				content = append(content, '\n')
			}
			parser := contentstream.NewParser(page.Resources)
			result := parser.Parse(content)
			tracer := contentstream.NewTracer(page.Height())
			tracer.Trace(result.Ops)
			cached = &pageOps{ops: result.Ops}
			cache[area.PageIndex] = cached
		}

		score, gaps := scoreArea(cached.ops, area.Rect)
		finding := Finding{Area: area, Score: score, Gaps: gaps}
		if score > a.RiskThreshold {
			finding.Comment = "gap widths around this area vary enough to estimate the removed content's extent"
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("page %d: re-run redaction with position normalization at Enhanced level for area (%.1f, %.1f, %.1f, %.1f)",
					area.PageIndex, area.Rect.X, area.Rect.Y, area.Rect.W, area.Rect.H))
		}
		report.Findings = append(report.Findings, finding)
		if score > report.OverallRiskScore {
			report.OverallRiskScore = score
		}
	}
	report.OverallRiskScore = clamp01(report.OverallRiskScore)
	return report, nil
}

// scoreArea samples horizontal gaps between operations sharing the
// area's horizontal band and returns the normalized entropy of the
// gap-size distribution.
func scoreArea(ops []contentstream.Op, rect coords.Rect) (float64, int) {
	var boxes []coords.Rect
	for _, op := range ops {
		bbox, ok := op.Bounds()
		if !ok {
			continue
		}
		if bbox.Y < rect.MaxY() && rect.Y < bbox.MaxY() {
			boxes = append(boxes, bbox)
		}
	}
	if len(boxes) < 2 {
		return 0, 0
	}
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].X < boxes[j].X })

	var gaps []float64
	for i := 0; i+1 < len(boxes); i++ {
		g := boxes[i+1].X - boxes[i].MaxX()
		if g > 0 {
			gaps = append(gaps, g)
		}
	}
	if len(gaps) < 2 {
		return 0, len(gaps)
	}
	return clamp01(normalizedEntropy(gaps)), len(gaps)
}

// normalizedEntropy buckets the gaps and returns Shannon entropy
// normalized by the maximum possible for the sample count: 0 when every
// gap is the same width, 1 when all differ.
func normalizedEntropy(gaps []float64) float64 {
	counts := make(map[int64]int)
	for _, g := range gaps {
		counts[int64(math.Round(g/gapBucket))]++
	}
	if len(counts) < 2 {
		return 0
	}
	n := float64(len(gaps))
	var h float64
	for _, c := range counts {
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h / math.Log2(n)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
