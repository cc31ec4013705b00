// Package scripting lets callers extend rectangle selection with their
// own redaction rules. A rule sees a summary of a kept candidate
// operation and may vote to remove it as well; rules can never rescind
// a geometric removal, so a buggy script cannot weaken redaction.
package scripting

import "context"

// Candidate summarizes one operation offered to a rule.
type Candidate struct {
	Kind      string // "text", "path", "image"
	Text      string // decoded text for "text" candidates
	PageIndex int
	// Display-space bbox.
	X, Y, W, H float64
}

// Decision is a rule's verdict on a candidate.
type Decision int

const (
	// Keep leaves the candidate to geometric selection alone.
	Keep Decision = iota
	// Remove redacts the candidate even though no rectangle covers it.
	Remove
)

// Rule decides whether a candidate operation should also be removed.
type Rule interface {
	Evaluate(ctx context.Context, c Candidate) (Decision, error)
}

// RuleFunc adapts a function to the Rule interface.
type RuleFunc func(ctx context.Context, c Candidate) (Decision, error)

func (f RuleFunc) Evaluate(ctx context.Context, c Candidate) (Decision, error) {
	return f(ctx, c)
}
