package fix

import (
	"context"
	"errors"
	"fmt"

	"lintls/internal/diag"
	"lintls/internal/rules"
	"lintls/internal/source"
)

var (
	// ErrEditOutOfRange is returned when a fix edits bytes outside its document.
	ErrEditOutOfRange = errors.New("fix edit out of document range")
	// ErrOverlappingEdits is returned when edits that must be applied together overlap.
	ErrOverlappingEdits = errors.New("overlapping fix edits")
	// ErrVersionMismatch is returned when fixes of one merge come from different document versions.
	ErrVersionMismatch = errors.New("fixes computed against different document versions")
)

// CheckFunc runs analysis of one file under the given settings and returns
// diagnostics in discovery order.
type CheckFunc func(ctx context.Context, file *source.File, settings rules.Settings) ([]diag.Diagnostic, error)

// Document is the part of a document snapshot the extractor needs.
type Document struct {
	URI      string
	Version  int32
	File     *source.File
	Encoding source.PositionEncoding
}

// LocatedEdit is a text edit resolved both to bytes and to client positions.
type LocatedEdit struct {
	Span    source.Span
	Range   source.Range
	NewText string
	OldText string
}

// Fix is a diagnostic's remediation bound to the document version it was
// computed against.
type Fix struct {
	Rule          string
	Title         string
	Applicability diag.Applicability
	URI           string
	Version       int32
	Edits         []LocatedEdit
}

// Extract runs check over doc and converts every fixable diagnostic into a Fix.
// settings is only read.
func Extract(ctx context.Context, doc Document, settings rules.Settings, check CheckFunc) ([]Fix, error) {
	if check == nil {
		return nil, fmt.Errorf("fix: no check function")
	}
	if doc.File == nil {
		return nil, fmt.Errorf("fix: document %s has no content", doc.URI)
	}
	diagnostics, err := check(ctx, doc.File, settings)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", doc.URI, err)
	}
	return ForDiagnostics(doc, diagnostics)
}

// ForDiagnostics maps diagnostics to fixes, keeping diagnostic order.
// Diagnostics without edits produce no fix.
func ForDiagnostics(doc Document, diagnostics []diag.Diagnostic) ([]Fix, error) {
	fixes := make([]Fix, 0, len(diagnostics))
	for _, d := range diagnostics {
		if !d.Fixable() {
			continue
		}
		edits, err := locateEdits(doc, d.Fix.Edits)
		if err != nil {
			return nil, fmt.Errorf("%s at %s: %w", d.Rule, d.Primary, err)
		}
		fixes = append(fixes, Fix{
			Rule:          d.Rule,
			Title:         d.Fix.Title,
			Applicability: d.Fix.Applicability,
			URI:           doc.URI,
			Version:       doc.Version,
			Edits:         edits,
		})
	}
	return fixes, nil
}

func locateEdits(doc Document, edits []diag.TextEdit) ([]LocatedEdit, error) {
	size := doc.File.Size()
	out := make([]LocatedEdit, 0, len(edits))
	for i, e := range edits {
		if e.Span.File != doc.File.ID || e.Span.Start > e.Span.End || e.Span.End > size {
			return nil, fmt.Errorf("%w: %s (size %d)", ErrEditOutOfRange, e.Span, size)
		}
		for _, prev := range edits[:i] {
			if prev.Span.Overlaps(e.Span) {
				return nil, fmt.Errorf("%w: %s and %s", ErrOverlappingEdits, prev.Span, e.Span)
			}
		}
		out = append(out, LocatedEdit{
			Span:    e.Span,
			Range:   doc.File.RangeOf(e.Span, doc.Encoding),
			NewText: e.NewText,
			OldText: e.OldText,
		})
	}
	return out, nil
}
