package diag

import (
	"lintls/internal/source"
)

// TextEdit replaces the bytes covered by Span with NewText.
// OldText is an optional guard checked before the edit is applied to disk.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// Fix is a remediation proposed by a rule. Edits of one fix never overlap.
type Fix struct {
	Title         string
	Applicability Applicability
	Edits         []TextEdit
}

// Diagnostic is one issue found by a rule.
type Diagnostic struct {
	Severity Severity
	Rule     string // rule code, e.g. "I001"
	Message  string
	Primary  source.Span
	Fix      *Fix
}

// New constructs a diagnostic without a fix.
func New(sev Severity, rule string, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Rule:     rule,
		Primary:  primary,
		Message:  msg,
	}
}

// WithFix returns a copy of d carrying fix.
func (d Diagnostic) WithFix(fix Fix) Diagnostic {
	d.Fix = &fix
	return d
}

// Fixable reports whether the diagnostic carries at least one edit.
func (d Diagnostic) Fixable() bool {
	return d.Fix != nil && len(d.Fix.Edits) > 0
}
