package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	req := Begin(tr, ScopeRequest, "textDocument/codeAction", 0)
	lint := Begin(tr, ScopeAnalysis, "lint", req.ID())
	lint.End("")
	req.End("ok")

	out := buf.String()
	if strings.Contains(out, "lint") {
		t.Fatalf("analysis span must be filtered at phase level:\n%s", out)
	}
	if strings.Count(out, "textDocument/codeAction") != 2 {
		t.Fatalf("expected begin and end of request span:\n%s", out)
	}
}

func TestErrorLevelEmitsOnlyFailures(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatText)
	Begin(tr, ScopeAnalysis, "ok", 0).End("")
	Begin(tr, ScopeAnalysis, "merge", 0).Fail(errors.New("overlap")).End("")

	out := buf.String()
	if strings.Count(out, "\n") != 1 || !strings.Contains(out, "! merge") || !strings.Contains(out, "error=overlap") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestStartPropagatesParent(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)

	ctx, outer := Start(ctx, ScopeRequest, "resolve")
	_, inner := Start(ctx, ScopeAnalysis, "lint")
	inner.WithExtra("rules", "3").End("")
	outer.End("")

	var events []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("invalid ndjson %q: %v", line, err)
		}
		events = append(events, ev)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if got := events[1]["parent_id"]; got != float64(outer.ID()) {
		t.Fatalf("inner span parent = %v, want %d", got, outer.ID())
	}
	extra, _ := events[2]["extra"].(map[string]any)
	if extra["rules"] != "3" {
		t.Fatalf("expected extra on end event, got %v", events[2])
	}
}

func TestNopTracerIsSilent(t *testing.T) {
	ctx, span := Start(context.Background(), ScopeRequest, "x")
	if span.ID() != 0 || CurrentSpan(ctx).SpanID != 0 {
		t.Fatalf("nop tracer must not allocate spans")
	}
	if span.End("") != 0 {
		t.Fatalf("nop span must report zero duration")
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel: %v %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat: %v %v", f, err)
	}
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("off level must yield nop tracer")
	}
}
