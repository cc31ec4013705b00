package editor

import (
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// TermsLog accumulates the literal text of every removed glyph run in a
// session, so a later metadata pass can scrub the same terms. It is
// caller-owned state, not a package global: tests and independent
// sessions each hold their own log. Safe for concurrent reads; the
// redaction path itself is single-threaded per document.
type TermsLog struct {
	mu    sync.Mutex
	terms []string
	seen  map[string]struct{}
}

func NewTermsLog() *TermsLog {
	return &TermsLog{seen: make(map[string]struct{})}
}

// Add records a removed term. Empty and duplicate terms are ignored.
func (l *TermsLog) Add(term string) {
	if term == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[term]; ok {
		return
	}
	l.seen[term] = struct{}{}
	l.terms = append(l.terms, term)
}

// Terms returns a copy of the recorded terms in removal order.
func (l *TermsLog) Terms() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.terms...)
}

// Len returns the number of distinct recorded terms.
func (l *TermsLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.terms)
}

// Clear resets the log between independent sessions.
func (l *TermsLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.terms = nil
	l.seen = make(map[string]struct{})
}

// Digests returns BLAKE2b-256 digests of the recorded terms, hex
// encoded. Audit artifacts reference terms by digest so reports cannot
// re-leak what was removed.
func (l *TermsLog) Digests() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.terms))
	for i, t := range l.terms {
		sum := blake2b.Sum256([]byte(t))
		out[i] = hex.EncodeToString(sum[:])
	}
	return out
}
