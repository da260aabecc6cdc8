// Package testkit holds checks shared by tests across packages.
package testkit

import (
	"fmt"

	"lintls/internal/diag"
	"lintls/internal/source"
)

// CheckDiagnosticInvariants verifies what every linter result must satisfy:
//  1. primary spans and fix edits point into file and are well ordered
//  2. edits of one fix do not overlap
//  3. edits of different fixes do not overlap, so applying every fix at
//     once is always possible
//  4. a fix has a title and at least one edit
func CheckDiagnosticInvariants(file *source.File, diagnostics []diag.Diagnostic) error {
	if file == nil {
		return fmt.Errorf("nil file")
	}
	size := file.Size()
	inBounds := func(sp source.Span) error {
		if sp.File != file.ID {
			return fmt.Errorf("span %s points to file %d, want %d", sp, sp.File, file.ID)
		}
		if sp.Start > sp.End || sp.End > size {
			return fmt.Errorf("span %s out of bounds (size %d)", sp, size)
		}
		return nil
	}
	var claimed []source.Span
	for i, d := range diagnostics {
		if d.Rule == "" || d.Message == "" {
			return fmt.Errorf("diagnostic %d has no rule or message", i)
		}
		if err := inBounds(d.Primary); err != nil {
			return fmt.Errorf("%s primary: %w", d.Rule, err)
		}
		if d.Fix == nil {
			continue
		}
		if d.Fix.Title == "" || len(d.Fix.Edits) == 0 {
			return fmt.Errorf("%s at %s: fix without title or edits", d.Rule, d.Primary)
		}
		for j, e := range d.Fix.Edits {
			if err := inBounds(e.Span); err != nil {
				return fmt.Errorf("%s edit %d: %w", d.Rule, j, err)
			}
			for _, prev := range d.Fix.Edits[:j] {
				if prev.Span.Overlaps(e.Span) {
					return fmt.Errorf("%s: edits %s and %s overlap", d.Rule, prev.Span, e.Span)
				}
			}
			for _, prev := range claimed {
				if prev.Overlaps(e.Span) {
					return fmt.Errorf("%s: edit %s overlaps an earlier fix at %s", d.Rule, e.Span, prev)
				}
			}
		}
		for _, e := range d.Fix.Edits {
			claimed = append(claimed, e.Span)
		}
	}
	return nil
}
