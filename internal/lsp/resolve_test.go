package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sort"
	"strings"
	"testing"

	"lintls/internal/diag"
	"lintls/internal/fix"
	"lintls/internal/lint"
	"lintls/internal/rules"
	"lintls/internal/session"
	"lintls/internal/source"
)

const testURI = "file:///work/main.py"

func linterSettings(codes ...string) rules.Settings {
	set := make([]rules.Rule, 0, len(codes))
	for _, code := range codes {
		set = append(set, rules.MustFromCode(code))
	}
	return rules.DefaultSettings().WithRules(rules.NewRuleSet(set...))
}

func openIndex(t *testing.T, content string, linter rules.Settings) *session.Index {
	t.Helper()
	idx := session.NewIndex(nil)
	settings := session.DefaultResolvedSettings()
	settings.Linter = linter
	idx.SetSettings(settings)
	idx.Open(testURI, 3, content)
	return idx
}

// spy records calls to the snapshot and analysis contracts.
type spy struct {
	snapshots int
	checks    int
	settings  []rules.Settings
	snapshot  SnapshotFunc
	check     fix.CheckFunc
}

func (s *spy) resolver() *Resolver {
	return &Resolver{
		Snapshot: func(uri string) (*session.DocumentSnapshot, error) {
			s.snapshots++
			return s.snapshot(uri)
		},
		Check: func(ctx context.Context, file *source.File, settings rules.Settings) ([]diag.Diagnostic, error) {
			s.checks++
			s.settings = append(s.settings, settings)
			return s.check(ctx, file, settings)
		},
	}
}

func newSpy(idx *session.Index) *spy {
	return &spy{snapshot: idx.Snapshot, check: lint.Check}
}

func sourceAction(kind string, uri string) CodeAction {
	data, _ := json.Marshal(codeActionData{URI: uri})
	return CodeAction{Title: "action", Kind: kind, Data: data}
}

func responseCode(t *testing.T, err error) int {
	t.Helper()
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected *ResponseError, got %T: %v", err, err)
	}
	return respErr.Code
}

// applyWorkspaceEdit applies the edits of a single-document change to content.
func applyWorkspaceEdit(t *testing.T, content string, edit *WorkspaceEdit) string {
	t.Helper()
	if edit == nil {
		return content
	}
	if len(edit.DocumentChanges) != 1 {
		t.Fatalf("expected one document change, got %d", len(edit.DocumentChanges))
	}
	file := source.NewFile("", []byte(content), source.FileVirtual)
	type located struct {
		start, end uint32
		text       string
	}
	var edits []located
	for _, e := range edit.DocumentChanges[0].Edits {
		r := e.Range.toSource()
		edits = append(edits, located{
			start: file.OffsetAt(r.Start, source.EncodingUTF16),
			end:   file.OffsetAt(r.End, source.EncodingUTF16),
			text:  e.NewText,
		})
	}
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	for _, e := range edits {
		content = content[:e.start] + e.text + content[e.end:]
	}
	return content
}

func TestResolveFixAllAppliesOnlySafeFixes(t *testing.T) {
	content := "if x == None:\n    pass  \n"
	s := newSpy(openIndex(t, content, linterSettings(rules.NoneComparison, rules.TrailingWhitespace)))

	resolved, err := s.resolver().Resolve(context.Background(), sourceAction(kindFixAllLintls, testURI))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Edit == nil {
		t.Fatalf("expected an edit")
	}
	change := resolved.Edit.DocumentChanges[0]
	if change.TextDocument.URI != testURI || change.TextDocument.Version != 3 {
		t.Fatalf("unexpected document identity %+v", change.TextDocument)
	}
	if len(change.Edits) != 1 {
		t.Fatalf("expected only the trailing whitespace edit, got %+v", change.Edits)
	}
	got := applyWorkspaceEdit(t, content, resolved.Edit)
	if got != "if x == None:\n    pass\n" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestResolveOrganizeImportsUsesOnlyImportRules(t *testing.T) {
	content := "import sys\nimport os\n\nx = 1\n\nimport b\nimport a\n"
	caller := linterSettings(rules.NoneComparison, rules.TrailingWhitespace)
	idx := openIndex(t, content, caller)
	s := newSpy(idx)

	resolved, err := s.resolver().Resolve(context.Background(), sourceAction(kindOrganizeImportsLintls, testURI))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(s.settings) != 1 {
		t.Fatalf("expected one analysis, got %d", len(s.settings))
	}
	if got := s.settings[0].Rules.Codes(); !slices.Equal(got, []string{rules.UnsortedImports, rules.MissingRequiredImport}) {
		t.Fatalf("analysis ran rules %v", got)
	}
	if got := applyWorkspaceEdit(t, content, resolved.Edit); got != "import os\nimport sys\n\nx = 1\n\nimport a\nimport b\n" {
		t.Fatalf("unexpected result %q", got)
	}
	if n := len(resolved.Edit.DocumentChanges[0].Edits); n != 2 {
		t.Fatalf("expected two import edits, got %d", n)
	}
	snap, err := idx.Snapshot(testURI)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !snap.Settings.Linter.Equal(caller) {
		t.Fatalf("caller settings changed to %v", snap.Settings.Linter.Rules)
	}
}

func TestResolveOrganizeImportsIncludesUnsafeFixes(t *testing.T) {
	content := "import sys\nimport os\n"
	s := newSpy(openIndex(t, content, rules.DefaultSettings()))
	s.check = func(ctx context.Context, file *source.File, settings rules.Settings) ([]diag.Diagnostic, error) {
		d := diag.New(diag.SevWarning, rules.UnsortedImports, source.Span{File: file.ID, Start: 0, End: file.Size()}, "unsorted")
		return []diag.Diagnostic{d.WithFix(diag.Fix{
			Title:         "Organize imports",
			Applicability: diag.Unsafe,
			Edits:         []diag.TextEdit{{Span: source.Span{File: file.ID, Start: 0, End: file.Size()}, NewText: "import os\nimport sys\n"}},
		})}, nil
	}
	resolved, err := s.resolver().Resolve(context.Background(), sourceAction(kindSourceOrganizeImports, testURI))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Edit == nil {
		t.Fatalf("expected unsafe import fix to be applied")
	}
}

func TestResolveSortedCRLFDocumentHasNoEdit(t *testing.T) {
	content := "import os\r\nimport sys\r\n\r\nx = 1\r\n"
	s := newSpy(openIndex(t, content, linterSettings(rules.UnsortedImports, rules.TrailingWhitespace, rules.MissingNewlineAtEOF)))

	for _, kind := range []string{kindFixAllLintls, kindOrganizeImportsLintls} {
		resolved, err := s.resolver().Resolve(context.Background(), sourceAction(kind, testURI))
		if err != nil {
			t.Fatalf("%s: Resolve: %v", kind, err)
		}
		if resolved.Edit != nil {
			t.Fatalf("%s: sorted CRLF document produced edit %+v", kind, resolved.Edit.DocumentChanges[0].Edits)
		}
	}
}

func TestResolveOrganizeImportsKeepsCRLF(t *testing.T) {
	content := "import sys\r\nimport os\r\nx = 1 \r\n"
	s := newSpy(openIndex(t, content, rules.DefaultSettings()))

	resolved, err := s.resolver().Resolve(context.Background(), sourceAction(kindOrganizeImportsLintls, testURI))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := applyWorkspaceEdit(t, content, resolved.Edit); got != "import os\r\nimport sys\r\nx = 1 \r\n" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestResolveCleanDocumentHasNoEdit(t *testing.T) {
	s := newSpy(openIndex(t, "x = 1\n", rules.DefaultSettings()))
	resolved, err := s.resolver().Resolve(context.Background(), sourceAction(kindFixAllLintls, testURI))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Edit != nil {
		t.Fatalf("expected no edit, got %+v", resolved.Edit)
	}
	raw, err := json.Marshal(resolved)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), `"edit"`) {
		t.Fatalf("edit must be absent on the wire: %s", raw)
	}
	if resolved.Title != "action" || !slices.Equal(resolved.Data, sourceAction(kindFixAllLintls, testURI).Data) {
		t.Fatalf("resolve must keep the rest of the action: %+v", resolved)
	}
}

func TestResolveRejectsUndecodableData(t *testing.T) {
	cases := map[string]json.RawMessage{
		"string":  json.RawMessage(`"not-an-object"`),
		"missing": nil,
		"null":    json.RawMessage(`null`),
		"no uri":  json.RawMessage(`{"uri":""}`),
		"number":  json.RawMessage(`{"uri":42}`),
	}
	for name, data := range cases {
		s := newSpy(openIndex(t, "x = 1\n", rules.DefaultSettings()))
		_, err := s.resolver().Resolve(context.Background(), CodeAction{Kind: kindFixAllLintls, Data: data})
		if code := responseCode(t, err); code != codeInvalidParams {
			t.Fatalf("%s: expected InvalidParams, got %d", name, code)
		}
		if s.snapshots != 0 || s.checks != 0 {
			t.Fatalf("%s: snapshot or analysis was called (%d, %d)", name, s.snapshots, s.checks)
		}
	}
}

func TestResolveRejectsQuickFixAndUnknownKinds(t *testing.T) {
	for _, kind := range []string{kindQuickFix, "quickfix.lintls", "refactor.extract", "source", ""} {
		s := newSpy(openIndex(t, "x = 1\n", rules.DefaultSettings()))
		_, err := s.resolver().Resolve(context.Background(), sourceAction(kind, testURI))
		if code := responseCode(t, err); code != codeInvalidParams {
			t.Fatalf("%q: expected InvalidParams, got %d", kind, code)
		}
		if s.snapshots != 0 {
			t.Fatalf("%q: snapshot fetched for a rejected kind", kind)
		}
	}
}

func TestResolveUnknownDocumentIsInternal(t *testing.T) {
	s := newSpy(session.NewIndex(nil))
	var logged []string
	r := s.resolver()
	r.Logf = func(format string, args ...any) { logged = append(logged, format) }
	_, err := r.Resolve(context.Background(), sourceAction(kindFixAllLintls, "file:///work/closed.py"))
	if code := responseCode(t, err); code != codeInternalError {
		t.Fatalf("expected InternalError, got %d", code)
	}
	if !errors.Is(err, session.ErrDocumentNotFound) {
		t.Fatalf("expected cause to be kept, got %v", err)
	}
	if len(logged) != 1 {
		t.Fatalf("expected the internal error to be logged once, got %d", len(logged))
	}
	if s.checks != 0 {
		t.Fatalf("analysis ran without a snapshot")
	}
}

func TestResolveAnalysisFailureIsInternal(t *testing.T) {
	s := newSpy(openIndex(t, "x = 1\n", rules.DefaultSettings()))
	boom := errors.New("boom")
	s.check = func(context.Context, *source.File, rules.Settings) ([]diag.Diagnostic, error) {
		return nil, boom
	}
	_, err := s.resolver().Resolve(context.Background(), sourceAction(kindFixAllLintls, testURI))
	if code := responseCode(t, err); code != codeInternalError {
		t.Fatalf("expected InternalError, got %d", code)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected cause to be kept, got %v", err)
	}
}

func TestResolveOverlappingFixesIsInternal(t *testing.T) {
	s := newSpy(openIndex(t, "value = 1  \n", rules.DefaultSettings()))
	s.check = func(ctx context.Context, file *source.File, settings rules.Settings) ([]diag.Diagnostic, error) {
		mk := func(rule string, start, end uint32) diag.Diagnostic {
			span := source.Span{File: file.ID, Start: start, End: end}
			return diag.New(diag.SevWarning, rule, span, "overlap").WithFix(diag.Fix{
				Title: "fix",
				Edits: []diag.TextEdit{{Span: span, NewText: ""}},
			})
		}
		return []diag.Diagnostic{mk(rules.TrailingWhitespace, 9, 11), mk(rules.CommentedOutCode, 0, 12)}, nil
	}
	_, err := s.resolver().Resolve(context.Background(), sourceAction(kindFixAllLintls, testURI))
	if code := responseCode(t, err); code != codeInternalError {
		t.Fatalf("expected InternalError, got %d", code)
	}
	if !errors.Is(err, fix.ErrOverlappingEdits) {
		t.Fatalf("expected ErrOverlappingEdits, got %v", err)
	}
}

func TestResolveSeesSnapshotNotLaterEdits(t *testing.T) {
	content := "x = 1  \n"
	idx := openIndex(t, content, linterSettings(rules.TrailingWhitespace))
	s := newSpy(idx)
	s.snapshot = func(uri string) (*session.DocumentSnapshot, error) {
		snap, err := idx.Snapshot(uri)
		if err == nil {
			idx.Open(uri, 4, "y = 2\n")
		}
		return snap, err
	}
	resolved, err := s.resolver().Resolve(context.Background(), sourceAction(kindFixAllLintls, testURI))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v := resolved.Edit.DocumentChanges[0].TextDocument.Version; v != 3 {
		t.Fatalf("edit must target the snapshot version, got %d", v)
	}
	if got := applyWorkspaceEdit(t, content, resolved.Edit); got != "x = 1\n" {
		t.Fatalf("unexpected result %q", got)
	}
}
