package audit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/wudi/redact/coords"
	"github.com/wudi/redact/model"
)

const (
	pageW = 612.0
	pageH = 792.0
)

func auditDoc(content string) *model.Document {
	return &model.Document{
		Pages: []*model.Page{{
			MediaBox: coords.DocumentRect(0, 0, pageW, pageH),
			Resources: &model.Resources{
				Fonts: map[string]*model.Font{
					"F1": {Subtype: "Type1", BaseFont: "Helvetica"},
				},
			},
			Contents: []model.ContentStream{{RawBytes: []byte(content)}},
		}},
	}
}

// runsAt builds one text line with two-glyph runs (10pt wide at size 10)
// at the given document x positions.
func runsAt(xs ...float64) string {
	var b strings.Builder
	for _, x := range xs {
		fmt.Fprintf(&b, "BT /F1 10 Tf %g 700 Td (AA) Tj ET ", x)
	}
	return b.String()
}

// bandRect covers the text line's display-space horizontal band.
func bandRect() coords.Rect { return coords.DisplayRect(0, 80, 200, 20) }

func TestUniformGapsScoreZero(t *testing.T) {
	doc := auditDoc(runsAt(10, 30, 50, 70))
	report, err := NewAnalyzer().Analyze(doc, []Area{{PageIndex: 0, Rect: bandRect()}})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	f := report.Findings[0]
	if f.Score != 0 {
		t.Errorf("score = %g, want 0 for uniform gaps", f.Score)
	}
	if f.Gaps != 3 {
		t.Errorf("gaps = %d, want 3", f.Gaps)
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("unexpected recommendations: %v", report.Recommendations)
	}
	if report.OverallRiskScore != 0 {
		t.Errorf("overall = %g", report.OverallRiskScore)
	}
}

func TestVariedGapsScoreHigh(t *testing.T) {
	// gaps 5, 12 and 35: all distinct, maximum entropy
	doc := auditDoc(runsAt(10, 25, 47, 92))
	a := NewAnalyzer()
	report, err := a.Analyze(doc, []Area{{PageIndex: 0, Rect: bandRect()}})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	f := report.Findings[0]
	if f.Score <= a.RiskThreshold {
		t.Fatalf("score = %g, want above threshold %g", f.Score, a.RiskThreshold)
	}
	if f.Comment == "" {
		t.Error("high-risk finding has no comment")
	}
	if len(report.Recommendations) == 0 {
		t.Error("high-risk finding produced no recommendation")
	}
	if report.OverallRiskScore != f.Score {
		t.Errorf("overall = %g, finding = %g", report.OverallRiskScore, f.Score)
	}
}

func TestTooFewBoxes(t *testing.T) {
	doc := auditDoc(runsAt(10))
	report, err := NewAnalyzer().Analyze(doc, []Area{{PageIndex: 0, Rect: bandRect()}})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	f := report.Findings[0]
	if f.Score != 0 || f.Gaps != 0 {
		t.Fatalf("finding = %+v, want zero score and gaps", f)
	}
}

func TestAreaOutsideBandIgnoresOtherLines(t *testing.T) {
	doc := auditDoc(runsAt(10, 25, 47, 92))
	// a rect far below the text line sees no boxes
	rect := coords.DisplayRect(0, 500, 200, 20)
	report, err := NewAnalyzer().Analyze(doc, []Area{{PageIndex: 0, Rect: rect}})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.Findings[0].Score != 0 {
		t.Fatalf("finding = %+v", report.Findings[0])
	}
}

func TestAnalyzeBadPage(t *testing.T) {
	doc := auditDoc(runsAt(10))
	_, err := NewAnalyzer().Analyze(doc, []Area{{PageIndex: 3, Rect: bandRect()}})
	if err == nil {
		t.Fatal("expected error for out-of-range page")
	}
}

func TestNormalizedEntropyBuckets(t *testing.T) {
	// differences below the bucket size are noise, not signal
	if got := normalizedEntropy([]float64{10, 10.1, 9.95}); got != 0 {
		t.Errorf("bucketed entropy = %g, want 0", got)
	}
	if got := normalizedEntropy([]float64{5, 20, 60}); got != 1 {
		t.Errorf("distinct-gap entropy = %g, want 1", got)
	}
}
