package scripting

import (
	"context"
	"testing"
	"time"
)

func TestJSRuleDecisions(t *testing.T) {
	rule, err := NewJSRule(`
		function evaluate(c) {
			return c.kind === "text" && c.text.indexOf("secret") >= 0;
		}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ctx := context.Background()

	dec, err := rule.Evaluate(ctx, Candidate{Kind: "text", Text: "top secret memo"})
	if err != nil || dec != Remove {
		t.Fatalf("got %v, %v; want Remove", dec, err)
	}
	dec, err = rule.Evaluate(ctx, Candidate{Kind: "text", Text: "weather report"})
	if err != nil || dec != Keep {
		t.Fatalf("got %v, %v; want Keep", dec, err)
	}
	dec, err = rule.Evaluate(ctx, Candidate{Kind: "image"})
	if err != nil || dec != Keep {
		t.Fatalf("got %v, %v; want Keep for non-text", dec, err)
	}
}

func TestJSRuleSeesGeometry(t *testing.T) {
	rule, err := NewJSRule(`
		function evaluate(c) {
			return c.pageIndex === 3 && c.x < 100 && c.w * c.h > 50;
		}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	dec, err := rule.Evaluate(context.Background(),
		Candidate{Kind: "path", PageIndex: 3, X: 40, Y: 10, W: 20, H: 5})
	if err != nil || dec != Remove {
		t.Fatalf("got %v, %v; want Remove", dec, err)
	}
}

func TestJSRuleCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"syntax error", "function evaluate( {"},
		{"no evaluate", "var x = 1;"},
		{"evaluate not a function", "var evaluate = 42;"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewJSRule(tc.script); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestJSRuleRuntimeError(t *testing.T) {
	rule, err := NewJSRule(`function evaluate(c) { return c.missing.field; }`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := rule.Evaluate(context.Background(), Candidate{}); err == nil {
		t.Fatal("expected runtime error")
	}
}

func TestJSRuleInterruptedByContext(t *testing.T) {
	rule, err := NewJSRule(`function evaluate(c) { for (;;) {} }`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := rule.Evaluate(ctx, Candidate{}); err == nil {
		t.Fatal("expected interruption error")
	}
}

func TestJSRuleCancelledBeforeCall(t *testing.T) {
	rule, err := NewJSRule(`function evaluate(c) { return false; }`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rule.Evaluate(ctx, Candidate{}); err != context.Canceled {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestRuleFuncAdapter(t *testing.T) {
	var rule Rule = RuleFunc(func(ctx context.Context, c Candidate) (Decision, error) {
		if c.Kind == "image" {
			return Remove, nil
		}
		return Keep, nil
	})
	dec, err := rule.Evaluate(context.Background(), Candidate{Kind: "image"})
	if err != nil || dec != Remove {
		t.Fatalf("got %v, %v", dec, err)
	}
}
