package fix

import (
	"lintls/internal/diag"
	"lintls/internal/source"
)

// Option mutates fix during construction.
type Option func(*diag.Fix)

// WithApplicability overrides applicability metadata.
func WithApplicability(app diag.Applicability) Option {
	return func(f *diag.Fix) {
		f.Applicability = app
	}
}

// Unsafe marks the fix as potentially changing semantics.
func Unsafe() Option {
	return WithApplicability(diag.Unsafe)
}

// DisplayOnly marks the fix as never applied automatically.
func DisplayOnly() Option {
	return WithApplicability(diag.DisplayOnly)
}

// AlsoEdit appends an extra edit to the fix.
func AlsoEdit(edit diag.TextEdit) Option {
	return func(f *diag.Fix) {
		f.Edits = append(f.Edits, edit)
	}
}

func build(title string, edit diag.TextEdit, opts []Option) diag.Fix {
	f := diag.Fix{
		Title:         title,
		Applicability: diag.Safe,
		Edits:         []diag.TextEdit{edit},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// InsertText creates fix that inserts text at span (Span.Start == Span.End).
func InsertText(title string, at source.Span, text string, opts ...Option) diag.Fix {
	at.End = at.Start
	return build(title, diag.TextEdit{Span: at, NewText: text}, opts)
}

// DeleteSpan removes text covered by span; expect guards the removed text.
func DeleteSpan(title string, span source.Span, expect string, opts ...Option) diag.Fix {
	return build(title, diag.TextEdit{Span: span, OldText: expect}, opts)
}

// ReplaceSpan replaces text covered by span with newText.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	return build(title, diag.TextEdit{Span: span, NewText: newText, OldText: expect}, opts)
}
