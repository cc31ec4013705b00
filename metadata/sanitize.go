// Package metadata scrubs redacted terms from document-level
// descriptive fields: the /Info dictionary and outline titles. Matches
// are replaced character for character so field lengths cannot leak
// what was removed.
package metadata

import (
	"strings"

	"github.com/wudi/redact/model"
)

// ReplacementGlyph overwrites each character of a matched term.
const ReplacementGlyph = '█'

// Producer identifies this tool after RemoveAllMetadata.
const Producer = "redact"

// SanitizeDocument replaces every case-insensitive occurrence of each
// term in the info fields and outline titles. Missing fields and an
// empty term list are no-ops.
func SanitizeDocument(doc *model.Document, terms []string) {
	if doc == nil || len(terms) == 0 {
		return
	}
	if info := doc.Info; info != nil {
		info.Title = sanitizeString(info.Title, terms)
		info.Author = sanitizeString(info.Author, terms)
		info.Subject = sanitizeString(info.Subject, terms)
		info.Creator = sanitizeString(info.Creator, terms)
		for i, kw := range info.Keywords {
			info.Keywords[i] = sanitizeString(kw, terms)
		}
	}
	sanitizeOutlines(doc.Outlines, terms)
}

// RemoveAllMetadata clears every info field and stamps the producer.
func RemoveAllMetadata(doc *model.Document) {
	if doc == nil {
		return
	}
	if doc.Info == nil {
		doc.Info = &model.DocumentInfo{}
	}
	*doc.Info = model.DocumentInfo{Producer: Producer}
	clearOutlineTitles(doc.Outlines)
}

func sanitizeOutlines(items []model.OutlineItem, terms []string) {
	for i := range items {
		items[i].Title = sanitizeString(items[i].Title, terms)
		sanitizeOutlines(items[i].Children, terms)
	}
}

func clearOutlineTitles(items []model.OutlineItem) {
	for i := range items {
		items[i].Title = ""
		clearOutlineTitles(items[i].Children)
	}
}

// sanitizeString replaces each match with the replacement glyph
// repeated to the matched substring's rune length, preserving total
// character count.
func sanitizeString(s string, terms []string) string {
	if s == "" {
		return s
	}
	for _, term := range terms {
		if term == "" {
			continue
		}
		s = replaceFold(s, term)
	}
	return s
}

// replaceFold is a case-insensitive ReplaceAll that substitutes the
// block glyph for every matched character.
func replaceFold(s, term string) string {
	lower := strings.ToLower(s)
	lowerTerm := strings.ToLower(term)
	var b strings.Builder
	for {
		i := strings.Index(lower, lowerTerm)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		matched := s[i : i+len(lowerTerm)]
		for range matched {
			b.WriteRune(ReplacementGlyph)
		}
		s = s[i+len(lowerTerm):]
		lower = lower[i+len(lowerTerm):]
	}
}
