package lsp

import (
	"context"
	"encoding/json"
	"strconv"

	"lintls/internal/fix"
	"lintls/internal/rules"
	"lintls/internal/session"
	"lintls/internal/trace"
)

// SnapshotFunc returns an immutable snapshot of an open document.
type SnapshotFunc func(uri string) (*session.DocumentSnapshot, error)

// Resolver computes the edits of source code actions, both lazily for
// codeAction/resolve and eagerly for clients that cannot resolve.
type Resolver struct {
	Snapshot SnapshotFunc
	Check    fix.CheckFunc
	Logf     func(format string, args ...any)
}

// Resolve fills in the edit of action. The returned action has no edit when
// the document needs no change. Errors are *ResponseError.
func (r *Resolver) Resolve(ctx context.Context, action CodeAction) (CodeAction, error) {
	ctx, span := trace.Start(ctx, trace.ScopeRequest, "codeAction/resolve")
	resolved, err := r.resolve(ctx, action)
	span.Fail(err).End(action.Kind)
	if err != nil {
		respErr := asResponseError(err)
		if respErr.Code == codeInternalError {
			r.logf("resolve %q: %v", action.Kind, err)
		}
		return CodeAction{}, respErr
	}
	return resolved, nil
}

func (r *Resolver) resolve(ctx context.Context, action CodeAction) (CodeAction, error) {
	var data codeActionData
	if err := json.Unmarshal(action.Data, &data); err != nil {
		return CodeAction{}, invalidParams("invalid code action data: %v", err)
	}
	if data.URI == "" {
		return CodeAction{}, invalidParams("code action data has no document uri")
	}
	kind, err := classifyCodeActionKind(action.Kind)
	if err != nil {
		return CodeAction{}, err
	}
	snap, err := r.Snapshot(data.URI)
	if err != nil {
		return CodeAction{}, internalError("document is not available", err)
	}
	edit, err := r.editFor(ctx, kind, snap)
	if err != nil {
		return CodeAction{}, err
	}
	action.Edit = edit
	return action, nil
}

// editFor runs the pipeline of kind against snap. Fix-all applies the safe
// fixes of the document settings; organize imports runs only the import rules
// and applies every fix they produce.
func (r *Resolver) editFor(ctx context.Context, kind codeActionKind, snap *session.DocumentSnapshot) (*WorkspaceEdit, error) {
	ctx, span := trace.Start(ctx, trace.ScopeAnalysis, kind.String())
	defer span.End(snap.URI)

	settings, filter := snap.Settings.Linter, fix.FilterSafeOnly
	if kind == actionSourceOrganizeImports {
		settings = rules.ForImports(settings, snap.Settings.OrganizeImportsCodes)
		filter = fix.FilterAll
	}
	fixes, err := fix.Extract(ctx, snap.Document(), settings, r.Check)
	if err != nil {
		span.Fail(err)
		return nil, internalError("analysis failed", err)
	}
	set, err := fix.Merge(fixes, filter)
	if err != nil {
		span.Fail(err)
		return nil, internalError("fixes could not be combined", err)
	}
	span.WithExtra("fixes", strconv.Itoa(len(fixes)))
	return workspaceEditFor(set), nil
}

func (r *Resolver) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

// workspaceEditFor converts a merged edit set. Nil means nothing to apply.
func workspaceEditFor(set *fix.EditSet) *WorkspaceEdit {
	if set == nil || len(set.Edits) == 0 {
		return nil
	}
	edits := make([]TextEdit, 0, len(set.Edits))
	for _, e := range set.Edits {
		edits = append(edits, TextEdit{Range: toLSPRange(e.Range), NewText: e.NewText})
	}
	return &WorkspaceEdit{DocumentChanges: []TextDocumentEdit{{
		TextDocument: versionedTextDocumentIdentifier{URI: set.URI, Version: set.Version},
		Edits:        edits,
	}}}
}
