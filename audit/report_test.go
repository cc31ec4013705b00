package audit

import (
	"strings"
	"testing"

	"github.com/wudi/redact/coords"
)

func sampleReport() *LeakageReport {
	return &LeakageReport{
		OverallRiskScore: 0.82,
		Findings: []Finding{{
			Area:    Area{PageIndex: 2, Rect: coords.DisplayRect(10, 20, 100, 15)},
			Score:   0.82,
			Gaps:    4,
			Comment: "gap widths around this area vary enough to estimate the removed content's extent",
		}},
		Recommendations: []string{"re-run with position normalization at Enhanced level"},
	}
}

func TestRenderMarkdown(t *testing.T) {
	digests := []string{"deadbeef"}
	md := string(RenderMarkdown(sampleReport(), digests))
	for _, want := range []string{
		"# Redaction leakage report",
		"0.82",
		"## Findings",
		"page 2",
		"## Recommendations",
		"## Redacted terms (BLAKE2b-256)",
		"`deadbeef`",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestRenderMarkdownOmitsEmptySections(t *testing.T) {
	md := string(RenderMarkdown(&LeakageReport{}, nil))
	if strings.Contains(md, "## Findings") || strings.Contains(md, "## Recommendations") {
		t.Fatalf("empty sections rendered:\n%s", md)
	}
	if strings.Contains(md, "Redacted terms") {
		t.Fatalf("digest section rendered without digests:\n%s", md)
	}
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(sampleReport(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<li>") {
		t.Fatalf("html structure missing:\n%s", html)
	}
	if !strings.Contains(html, "Redaction leakage report") {
		t.Fatalf("title missing:\n%s", html)
	}
}

func TestPlainText(t *testing.T) {
	out, err := PlainText(sampleReport(), []string{"deadbeef"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.ContainsAny(out, "<>") {
		t.Fatalf("tags leaked into plain text:\n%s", out)
	}
	for _, want := range []string{"Redaction leakage report", "page 2", "deadbeef"} {
		if !strings.Contains(out, want) {
			t.Errorf("plain text missing %q:\n%s", want, out)
		}
	}
}
