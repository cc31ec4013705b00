package observability

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewZapLogger(zap.New(core))

	log.Info("page redacted",
		Int("page", 3),
		String("reason", "batch"),
		Float64("score", 0.25),
		Error("cause", errors.New("boom")),
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e.Message != "page redacted" {
		t.Fatalf("message = %q", e.Message)
	}
	ctx := e.ContextMap()
	if ctx["page"] != int64(3) {
		t.Errorf("page = %v", ctx["page"])
	}
	if ctx["reason"] != "batch" {
		t.Errorf("reason = %v", ctx["reason"])
	}
	if ctx["score"] != 0.25 {
		t.Errorf("score = %v", ctx["score"])
	}
	if ctx["cause"] != "boom" {
		t.Errorf("cause = %v", ctx["cause"])
	}
}

func TestZapLoggerWith(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewZapLogger(zap.New(core)).With(Int("page", 1))
	log.Warn("skipping degenerate redaction area")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].ContextMap()["page"] != int64(1) {
		t.Fatalf("context = %v", entries[0].ContextMap())
	}
}

func TestLevels(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := NewZapLogger(zap.New(core))
	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Error("shown")
	if got := logs.Len(); got != 2 {
		t.Fatalf("got %d entries, want 2", got)
	}
}

func TestNopLogger(t *testing.T) {
	var log Logger = NopLogger{}
	// must be safe to call with anything, including a derived logger
	log.With(String("k", "v")).Info("msg", Int("n", 1))
}
