package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"lintls/internal/diag"
	"lintls/internal/source"
)

type palette struct {
	path, code, errCode, fixMark, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:    color.New(color.Bold),
		code:    color.New(color.FgYellow, color.Bold),
		errCode: color.New(color.FgRed, color.Bold),
		fixMark: color.New(color.FgCyan),
		gutter:  color.New(color.FgBlue, color.Bold),
		caret:   color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.path, p.code, p.errCode, p.fixMark, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// FixMark is "[*]" for a safe fix, "[U]" for an unsafe one and "" otherwise.
func FixMark(d diag.Diagnostic) string {
	if !d.Fixable() {
		return ""
	}
	switch d.Fix.Applicability {
	case diag.Safe:
		return "[*]"
	case diag.Unsafe:
		return "[U]"
	default:
		return ""
	}
}

// Pretty prints diagnostics of one file as
//
//	<path>:<line>:<col>: <CODE> [*] <message>
//
// optionally followed by the source line and a caret underline.
func Pretty(w io.Writer, file *source.File, diagnostics []diag.Diagnostic, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	path := displayPath(file.Path, opts.PathMode, opts.BaseDir)
	for _, d := range diagnostics {
		pos := file.LineCol(d.Primary.Start)
		codeColor := p.code
		if d.Severity == diag.SevError {
			codeColor = p.errCode
		}
		header := fmt.Sprintf("%s:%d:%d: %s", p.path.Sprint(path), pos.Line, pos.Col, codeColor.Sprint(d.Rule))
		if mark := FixMark(d); mark != "" {
			header += " " + p.fixMark.Sprint(mark)
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", header, d.Message); err != nil {
			return err
		}
		if opts.Source {
			if err := writeSnippet(w, file, d.Primary, p); err != nil {
				return err
			}
		}
		if opts.ShowFixes && d.Fixable() {
			if _, err := fmt.Fprintf(w, "  %s %s (%s)\n", p.gutter.Sprint("="), d.Fix.Title, d.Fix.Applicability); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSnippet(w io.Writer, file *source.File, span source.Span, p palette) error {
	pos := file.LineCol(span.Start)
	line := int(pos.Line) - 1
	text := file.Line(line)
	lineSpan := file.LineSpan(line)

	end := min(span.End, lineSpan.End)
	prefix := expandTabs(string(file.Content[lineSpan.Start:span.Start]))
	covered := expandTabs(string(file.Content[span.Start:end]))
	pad := runewidth.StringWidth(prefix)
	width := max(runewidth.StringWidth(covered), 1)

	num := fmt.Sprintf("%d", pos.Line)
	gutter := strings.Repeat(" ", len(num))
	_, err := fmt.Fprintf(w, "%s %s %s\n%s %s %s%s\n",
		p.gutter.Sprint(num), p.gutter.Sprint("|"), expandTabs(text),
		gutter, p.gutter.Sprint("|"), strings.Repeat(" ", pad), p.caret.Sprint(strings.Repeat("^", width)))
	return err
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

// Summary counts totals across files.
type Summary struct {
	Files       int
	Diagnostics int
	SafeFixes   int
	UnsafeFixes int
}

// Add accounts for one file's diagnostics.
func (s *Summary) Add(diagnostics []diag.Diagnostic) {
	s.Files++
	s.Diagnostics += len(diagnostics)
	for _, d := range diagnostics {
		switch FixMark(d) {
		case "[*]":
			s.SafeFixes++
		case "[U]":
			s.UnsafeFixes++
		}
	}
}

// WriteSummary prints the closing line of a check run.
func WriteSummary(w io.Writer, s Summary) error {
	if s.Diagnostics == 0 {
		_, err := fmt.Fprintln(w, "All checks passed!")
		return err
	}
	noun := "errors"
	if s.Diagnostics == 1 {
		noun = "error"
	}
	if _, err := fmt.Fprintf(w, "Found %d %s.\n", s.Diagnostics, noun); err != nil {
		return err
	}
	if s.SafeFixes > 0 {
		if _, err := fmt.Fprintf(w, "[*] %d fixable with `lintls fix`.\n", s.SafeFixes); err != nil {
			return err
		}
	}
	if s.UnsafeFixes > 0 {
		if _, err := fmt.Fprintf(w, "[U] %d more fixable with `lintls fix --unsafe`.\n", s.UnsafeFixes); err != nil {
			return err
		}
	}
	return nil
}
