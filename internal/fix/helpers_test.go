package fix

import (
	"context"
	"testing"

	"lintls/internal/diag"
	"lintls/internal/rules"
	"lintls/internal/source"
)

const testURI = "file:///work/main.py"

func testDocument(t *testing.T, content string, version int32) Document {
	t.Helper()
	return Document{
		URI:      testURI,
		Version:  version,
		File:     source.NewFile("/work/main.py", []byte(content), source.FileVirtual),
		Encoding: source.EncodingUTF16,
	}
}

func span(start, end uint32) source.Span {
	return source.Span{Start: start, End: end}
}

func located(start, end uint32, text string) LocatedEdit {
	return LocatedEdit{Span: span(start, end), NewText: text}
}

func testFix(rule string, app diag.Applicability, version int32, edits ...LocatedEdit) Fix {
	return Fix{Rule: rule, Applicability: app, URI: testURI, Version: version, Edits: edits}
}

func staticCheck(diagnostics ...diag.Diagnostic) CheckFunc {
	return func(context.Context, *source.File, rules.Settings) ([]diag.Diagnostic, error) {
		return diagnostics, nil
	}
}
