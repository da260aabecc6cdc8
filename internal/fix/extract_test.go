package fix

import (
	"context"
	"errors"
	"testing"

	"lintls/internal/diag"
	"lintls/internal/rules"
	"lintls/internal/source"
)

func TestExtractKeepsDiagnosticOrderAndVersion(t *testing.T) {
	doc := testDocument(t, "import b\nimport a\nx = 1 \n", 7)
	check := staticCheck(
		diag.New(diag.SevWarning, "W291", span(23, 24), "trailing whitespace").
			WithFix(DeleteSpan("remove whitespace", span(23, 24), " ")),
		diag.New(diag.SevWarning, "E999", span(0, 1), "no fix here"),
		diag.New(diag.SevWarning, "I001", span(0, 18), "unsorted").
			WithFix(ReplaceSpan("sort imports", span(0, 18), "import a\nimport b\n", "")),
	)

	fixes, err := Extract(context.Background(), doc, rules.DefaultSettings(), check)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(fixes) != 2 {
		t.Fatalf("expected 2 fixes, got %d", len(fixes))
	}
	if fixes[0].Rule != "W291" || fixes[1].Rule != "I001" {
		t.Fatalf("fixes reordered: %s, %s", fixes[0].Rule, fixes[1].Rule)
	}
	for _, f := range fixes {
		if f.Version != 7 || f.URI != testURI {
			t.Fatalf("fix not tagged with document identity: %+v", f)
		}
	}
	got := fixes[0].Edits[0].Range
	want := source.Range{Start: source.Position{Line: 2, Character: 5}, End: source.Position{Line: 2, Character: 6}}
	if got != want {
		t.Fatalf("unexpected range %+v, want %+v", got, want)
	}
}

func TestExtractDoesNotTouchSettings(t *testing.T) {
	doc := testDocument(t, "x\n", 1)
	settings := rules.DefaultSettings().WithRequiredImports([]string{"import os"})
	before := settings.Clone()
	check := func(_ context.Context, _ *source.File, s rules.Settings) ([]diag.Diagnostic, error) {
		if !s.Equal(before) {
			t.Errorf("check received different settings")
		}
		return nil, nil
	}
	if _, err := Extract(context.Background(), doc, settings, check); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !settings.Equal(before) {
		t.Fatal("settings changed by Extract")
	}
}

func TestExtractPropagatesCheckFailure(t *testing.T) {
	boom := errors.New("boom")
	check := func(context.Context, *source.File, rules.Settings) ([]diag.Diagnostic, error) {
		return nil, boom
	}
	_, err := Extract(context.Background(), testDocument(t, "", 1), rules.Settings{}, check)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped check error, got %v", err)
	}
}

func TestForDiagnosticsRejectsBadEdits(t *testing.T) {
	doc := testDocument(t, "abc", 1)

	outOfRange := diag.New(diag.SevWarning, "W292", span(0, 0), "x").
		WithFix(InsertText("append", span(10, 10), "\n"))
	if _, err := ForDiagnostics(doc, []diag.Diagnostic{outOfRange}); !errors.Is(err, ErrEditOutOfRange) {
		t.Fatalf("expected ErrEditOutOfRange, got %v", err)
	}

	overlapping := diag.New(diag.SevWarning, "E711", span(0, 3), "x").
		WithFix(ReplaceSpan("first", span(0, 2), "x", "", AlsoEdit(diag.TextEdit{Span: span(1, 3), NewText: "y"})))
	if _, err := ForDiagnostics(doc, []diag.Diagnostic{overlapping}); !errors.Is(err, ErrOverlappingEdits) {
		t.Fatalf("expected ErrOverlappingEdits, got %v", err)
	}
}

func TestBuildersDefaultToSafe(t *testing.T) {
	if f := InsertText("t", span(3, 9), "x"); f.Applicability != diag.Safe || !f.Edits[0].Span.Empty() {
		t.Fatalf("unexpected insert fix %+v", f)
	}
	if f := ReplaceSpan("t", span(0, 1), "y", "", Unsafe()); f.Applicability != diag.Unsafe {
		t.Fatalf("expected unsafe fix, got %s", f.Applicability)
	}
	if f := DeleteSpan("t", span(0, 1), "", DisplayOnly()); f.Applicability != diag.DisplayOnly {
		t.Fatalf("expected display-only fix, got %s", f.Applicability)
	}
}
