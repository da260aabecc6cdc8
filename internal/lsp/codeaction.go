package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"lintls/internal/diag"
	"lintls/internal/fix"
	"lintls/internal/session"
	"lintls/internal/source"
	"lintls/internal/trace"
)

// codeActions lists the actions available for params. Quick fixes always
// carry their edit. Source actions carry only data when the client resolves
// edits lazily; otherwise their edit is computed now and actions without
// one are left out.
func (s *Server) codeActions(ctx context.Context, params codeActionParams) ([]CodeAction, error) {
	uri := params.TextDocument.URI
	snap, err := s.index.Snapshot(uri)
	if err != nil {
		return nil, internalError("document is not available", err)
	}
	only := params.Context.Only
	actions := make([]CodeAction, 0)

	if kindAllowed(kindQuickFix, only) {
		quick, err := s.quickFixes(ctx, snap, params.Range.toSource())
		if err != nil {
			return nil, err
		}
		actions = append(actions, quick...)
	}

	sources := []struct {
		kind    codeActionKind
		enabled bool
		title   string
	}{
		{actionSourceFixAll, snap.Settings.FixAll, "Fix all auto-fixable problems"},
		{actionSourceOrganizeImports, snap.Settings.OrganizeImports, "Organize imports"},
	}
	for _, src := range sources {
		if !src.enabled || !kindAllowed(src.kind.String(), only) {
			continue
		}
		action := CodeAction{Title: fmt.Sprintf("%s: %s", serverName, src.title), Kind: src.kind.String()}
		if s.caps.CodeActionDeferredEditResolution {
			data, err := json.Marshal(codeActionData{URI: uri})
			if err != nil {
				return nil, internalError("encode code action data", err)
			}
			action.Data = data
			actions = append(actions, action)
			continue
		}
		edit, err := s.resolver.editFor(ctx, src.kind, snap)
		if err != nil {
			s.logf("%s for %s: %v", src.kind, uri, err)
			continue
		}
		if edit == nil {
			continue
		}
		action.Edit = edit
		actions = append(actions, action)
	}
	return actions, nil
}

// quickFixes offers one action per fixable diagnostic touching rng.
// Display-only fixes are never offered for application.
func (s *Server) quickFixes(ctx context.Context, snap *session.DocumentSnapshot, rng source.Range) ([]CodeAction, error) {
	ctx, span := trace.Start(ctx, trace.ScopeAnalysis, "quickfix")
	defer span.End(snap.URI)
	diagnostics, err := s.check(ctx, snap.File, snap.Settings.Linter)
	if err != nil {
		span.Fail(err)
		return nil, internalError("analysis failed", err)
	}
	start := snap.File.OffsetAt(rng.Start, snap.Encoding)
	end := snap.File.OffsetAt(rng.End, snap.Encoding)

	var actions []CodeAction
	doc := snap.Document()
	for _, d := range diagnostics {
		if !d.Fixable() || d.Fix.Applicability == diag.DisplayOnly {
			continue
		}
		if d.Primary.End < start || d.Primary.Start > end {
			continue
		}
		fixes, err := fix.ForDiagnostics(doc, []diag.Diagnostic{d})
		if err != nil {
			s.logf("quickfix %s for %s: %v", d.Rule, snap.URI, err)
			continue
		}
		edit := workspaceEditFor(&fix.EditSet{URI: doc.URI, Version: doc.Version, Edits: fixes[0].Edits})
		actions = append(actions, CodeAction{
			Title:       fmt.Sprintf("%s (%s)", d.Fix.Title, d.Rule),
			Kind:        kindQuickFix,
			Diagnostics: []lspDiagnostic{toLSPDiagnostic(snap.File, d, snap.Encoding)},
			IsPreferred: d.Fix.Applicability == diag.Safe,
			Edit:        edit,
		})
	}
	return actions, nil
}
