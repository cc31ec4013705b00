package metadata

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/wudi/redact/model"
)

func TestSanitizeReplacesCaseInsensitive(t *testing.T) {
	doc := &model.Document{
		Info: &model.DocumentInfo{
			Title:    "Report on Project X",
			Subject:  "project x budget",
			Author:   "unrelated",
			Keywords: []string{"PROJECT X", "finance"},
		},
	}
	SanitizeDocument(doc, []string{"Project X"})
	if strings.Contains(strings.ToLower(doc.Info.Title), "project x") {
		t.Errorf("title = %q", doc.Info.Title)
	}
	if strings.Contains(doc.Info.Subject, "project x") {
		t.Errorf("subject = %q", doc.Info.Subject)
	}
	if doc.Info.Author != "unrelated" {
		t.Errorf("author altered: %q", doc.Info.Author)
	}
	if strings.Contains(doc.Info.Keywords[0], "PROJECT") || doc.Info.Keywords[1] != "finance" {
		t.Errorf("keywords = %v", doc.Info.Keywords)
	}
}

func TestSanitizePreservesRuneLength(t *testing.T) {
	doc := &model.Document{Info: &model.DocumentInfo{Title: "before SECRET after"}}
	SanitizeDocument(doc, []string{"SECRET"})
	if got, want := utf8.RuneCountInString(doc.Info.Title), len("before SECRET after"); got != want {
		t.Fatalf("rune length %d, want %d (%q)", got, want, doc.Info.Title)
	}
	if !strings.Contains(doc.Info.Title, strings.Repeat(string(ReplacementGlyph), 6)) {
		t.Fatalf("title = %q", doc.Info.Title)
	}
}

func TestSanitizeMultipleOccurrences(t *testing.T) {
	doc := &model.Document{Info: &model.DocumentInfo{Title: "x secret y Secret z"}}
	SanitizeDocument(doc, []string{"secret"})
	if strings.Contains(strings.ToLower(doc.Info.Title), "secret") {
		t.Fatalf("title = %q", doc.Info.Title)
	}
	if !strings.HasPrefix(doc.Info.Title, "x ") || !strings.HasSuffix(doc.Info.Title, " z") {
		t.Fatalf("surrounding text altered: %q", doc.Info.Title)
	}
}

func TestSanitizeOutlineTree(t *testing.T) {
	doc := &model.Document{
		Outlines: []model.OutlineItem{
			{Title: "Chapter on SECRET", Children: []model.OutlineItem{
				{Title: "secret details"},
			}},
			{Title: "Appendix"},
		},
	}
	SanitizeDocument(doc, []string{"SECRET"})
	if strings.Contains(strings.ToLower(doc.Outlines[0].Title), "secret") {
		t.Errorf("outline title = %q", doc.Outlines[0].Title)
	}
	if strings.Contains(strings.ToLower(doc.Outlines[0].Children[0].Title), "secret") {
		t.Errorf("nested title = %q", doc.Outlines[0].Children[0].Title)
	}
	if doc.Outlines[1].Title != "Appendix" {
		t.Errorf("clean title altered: %q", doc.Outlines[1].Title)
	}
}

func TestSanitizeNoOps(t *testing.T) {
	SanitizeDocument(nil, []string{"x"})
	doc := &model.Document{Info: &model.DocumentInfo{Title: "keep"}}
	SanitizeDocument(doc, nil)
	if doc.Info.Title != "keep" {
		t.Fatalf("title = %q", doc.Info.Title)
	}
	SanitizeDocument(doc, []string{""})
	if doc.Info.Title != "keep" {
		t.Fatalf("empty term changed title: %q", doc.Info.Title)
	}
}

func TestRemoveAllMetadata(t *testing.T) {
	doc := &model.Document{
		Info: &model.DocumentInfo{Title: "t", Author: "a", Keywords: []string{"k"}},
		Outlines: []model.OutlineItem{
			{Title: "chapter", Children: []model.OutlineItem{{Title: "section"}}},
		},
	}
	RemoveAllMetadata(doc)
	if doc.Info.Title != "" || doc.Info.Author != "" || len(doc.Info.Keywords) != 0 {
		t.Fatalf("info = %+v", doc.Info)
	}
	if doc.Info.Producer != Producer {
		t.Fatalf("producer = %q", doc.Info.Producer)
	}
	if doc.Outlines[0].Title != "" || doc.Outlines[0].Children[0].Title != "" {
		t.Fatalf("outline titles survive: %+v", doc.Outlines)
	}
	// structure (page targets) stays; only titles go
	if len(doc.Outlines[0].Children) != 1 {
		t.Fatal("outline structure altered")
	}
}

func TestRemoveAllMetadataNilInfo(t *testing.T) {
	doc := &model.Document{}
	RemoveAllMetadata(doc)
	if doc.Info == nil || doc.Info.Producer != Producer {
		t.Fatalf("info = %+v", doc.Info)
	}
}
