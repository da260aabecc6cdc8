package diagfmt

import (
	"encoding/json"
	"io"

	"lintls/internal/diag"
	"lintls/internal/source"
)

// LocationJSON is a 1-based line/column location with byte offsets.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line"`
	StartCol  uint32 `json:"start_col"`
	EndLine   uint32 `json:"end_line"`
	EndCol    uint32 `json:"end_col"`
}

type FixEditJSON struct {
	Location LocationJSON `json:"location"`
	NewText  string       `json:"new_text"`
}

type FixJSON struct {
	Title         string        `json:"title"`
	Applicability string        `json:"applicability"`
	Edits         []FixEditJSON `json:"edits"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Fix      *FixJSON     `json:"fix,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// FileDiagnostics pairs a file with its diagnostics.
type FileDiagnostics struct {
	File        *source.File
	Diagnostics []diag.Diagnostic
}

func makeLocation(file *source.File, span source.Span, opts JSONOpts) LocationJSON {
	start, end := file.LineCol(span.Start), file.LineCol(span.End)
	return LocationJSON{
		File:      displayPath(file.Path, opts.PathMode, opts.BaseDir),
		StartByte: span.Start,
		EndByte:   span.End,
		StartLine: start.Line,
		StartCol:  start.Col,
		EndLine:   end.Line,
		EndCol:    end.Col,
	}
}

// BuildOutput converts diagnostics of several files into DiagnosticsOutput.
func BuildOutput(files []FileDiagnostics, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0)}
	for _, fd := range files {
		for _, d := range fd.Diagnostics {
			item := DiagnosticJSON{
				Severity: d.Severity.String(),
				Code:     d.Rule,
				Message:  d.Message,
				Location: makeLocation(fd.File, d.Primary, opts),
			}
			if opts.IncludeFixes && d.Fixable() {
				fix := &FixJSON{Title: d.Fix.Title, Applicability: d.Fix.Applicability.String()}
				for _, e := range d.Fix.Edits {
					fix.Edits = append(fix.Edits, FixEditJSON{Location: makeLocation(fd.File, e.Span, opts), NewText: e.NewText})
				}
				item.Fix = fix
			}
			out.Diagnostics = append(out.Diagnostics, item)
		}
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes indented DiagnosticsOutput.
func JSON(w io.Writer, files []FileDiagnostics, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildOutput(files, opts))
}
