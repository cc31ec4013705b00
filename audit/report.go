package audit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

// RenderMarkdown formats a leakage report as a Markdown document.
// Redacted terms never appear in reports; callers that want to
// reference them pass their digests.
func RenderMarkdown(r *LeakageReport, termDigests []string) []byte {
	var b bytes.Buffer
	b.WriteString("# Redaction leakage report\n\n")
	fmt.Fprintf(&b, "Overall risk score: **%.2f**\n\n", r.OverallRiskScore)

	if len(r.Findings) > 0 {
		b.WriteString("## Findings\n\n")
		for _, f := range r.Findings {
			fmt.Fprintf(&b, "- page %d, area (%.1f, %.1f, %.1f, %.1f): score %.2f over %d gaps",
				f.Area.PageIndex, f.Area.Rect.X, f.Area.Rect.Y, f.Area.Rect.W, f.Area.Rect.H,
				f.Score, f.Gaps)
			if f.Comment != "" {
				fmt.Fprintf(&b, " — %s", f.Comment)
			}
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
		b.WriteByte('\n')
	}

	if len(termDigests) > 0 {
		b.WriteString("## Redacted terms (BLAKE2b-256)\n\n")
		for _, d := range termDigests {
			fmt.Fprintf(&b, "- `%s`\n", d)
		}
	}
	return b.Bytes()
}

// RenderHTML converts the Markdown report to HTML.
func RenderHTML(r *LeakageReport, termDigests []string) ([]byte, error) {
	var out bytes.Buffer
	if err := goldmark.Convert(RenderMarkdown(r, termDigests), &out); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return out.Bytes(), nil
}

// PlainText flattens the HTML form of the report for text-only sinks.
func PlainText(r *LeakageReport, termDigests []string) (string, error) {
	rendered, err := RenderHTML(r, termDigests)
	if err != nil {
		return "", err
	}
	node, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return "", fmt.Errorf("parse report html: %w", err)
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "li", "h1", "h2", "h3", "ul", "ol":
				b.WriteByte('\n')
			}
		}
	}
	walk(node)
	return strings.TrimSpace(b.String()), nil
}
