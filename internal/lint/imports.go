package lint

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"lintls/internal/diag"
	"lintls/internal/fix"
	"lintls/internal/rules"
	"lintls/internal/source"
)

type importLine struct {
	text    string // canonical form, single spaces
	section int    // 0: __future__, 1: everything else
	kind    int    // 0: import x, 1: from x import y
	module  string // normalized sort key
}

type importBlock struct {
	span  source.Span
	lines []importLine
	// text is the block with "\n" between lines and no final line terminator
	text        string
	lastLine    int
	endsNewline bool
}

type importLayout struct {
	blocks   []importBlock
	present  map[string]bool
	insertAt uint32
}

// layout scans the file once for import blocks; it is shared by I001 and I002.
func (c *checker) layout() *importLayout {
	if c.imports != nil {
		return c.imports
	}
	l := &importLayout{present: make(map[string]bool)}
	f := c.file
	var cur *importBlock
	flush := func() {
		if cur != nil {
			l.blocks = append(l.blocks, *cur)
			cur = nil
		}
	}
	for i := 0; i < f.LineCount(); i++ {
		raw := f.Line(i)
		imp, ok := parseImportLine(raw)
		if !ok {
			flush()
			continue
		}
		l.present[imp.text] = true
		sp := f.LineSpan(i)
		if cur == nil {
			cur = &importBlock{span: sp}
		} else {
			cur.text += "\n"
		}
		cur.text += raw
		cur.span = cur.span.Cover(sp)
		cur.lastLine = i
		cur.endsNewline = i+1 < f.LineCount()
		cur.lines = append(cur.lines, imp)
	}
	flush()
	// a block owns the terminator of its last line
	for i := range l.blocks {
		if b := &l.blocks[i]; b.endsNewline {
			b.span.End = f.LineSpan(b.lastLine + 1).Start
		}
	}
	l.insertAt = headerEnd(f)
	c.imports = l
	return l
}

func parseImportLine(raw string) (importLine, bool) {
	if raw == "" || raw[0] == ' ' || raw[0] == '\t' {
		return importLine{}, false
	}
	if strings.ContainsAny(raw, ";(\\#") {
		return importLine{}, false
	}
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return importLine{}, false
	}
	line := importLine{text: strings.Join(fields, " ")}
	switch fields[0] {
	case "import":
	case "from":
		if len(fields) < 4 || fields[2] != "import" {
			return importLine{}, false
		}
		line.kind = 1
	default:
		return importLine{}, false
	}
	// module names compare NFC-normalized and case-folded
	line.module = strings.ToLower(norm.NFC.String(fields[1]))
	if line.module != "__future__" {
		line.section = 1
	}
	return line, true
}

// headerEnd is the offset where new imports go: after leading comments,
// blank lines and a module docstring.
func headerEnd(f *source.File) uint32 {
	n := f.LineCount()
	i := 0
	for i < n {
		t := strings.TrimSpace(f.Line(i))
		if t == "" || strings.HasPrefix(t, "#") {
			i++
			continue
		}
		break
	}
	if i < n {
		if quote, ok := docstringQuote(strings.TrimSpace(f.Line(i))); ok {
			t := strings.TrimSpace(f.Line(i))
			rest := strings.TrimPrefix(strings.TrimLeft(t, "rRuUbB"), quote)
			if !strings.Contains(rest, quote) {
				i++
				for i < n && !strings.Contains(f.Line(i), quote) {
					i++
				}
			}
			i++
		}
	}
	if i >= n {
		return f.Size()
	}
	return f.LineSpan(i).Start
}

func docstringQuote(line string) (string, bool) {
	t := strings.TrimLeft(line, "rRuUbB")
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(t, q) {
			return q, true
		}
	}
	return "", false
}

// missingRequired lists required imports not present in the file, canonicalized.
func (c *checker) missingRequired() []string {
	if !c.settings.Enabled(rules.MissingRequiredImport) {
		return nil
	}
	l := c.layout()
	var missing []string
	for _, req := range c.settings.RequiredImports {
		imp, ok := parseImportLine(strings.TrimSpace(req))
		if !ok || l.present[imp.text] {
			continue
		}
		missing = append(missing, imp.text)
	}
	return missing
}

// absorbsRequired reports whether I001 rewrites the block at the insertion
// point and therefore carries the missing required imports itself.
func (c *checker) absorbsRequired() bool {
	if !c.settings.Enabled(rules.UnsortedImports) {
		return false
	}
	l := c.layout()
	return len(l.blocks) > 0 && l.blocks[0].span.Start == l.insertAt
}

func sortedBlock(lines []importLine) []importLine {
	out := make([]importLine, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if seen[l.text] {
			continue
		}
		seen[l.text] = true
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].section != out[j].section {
			return out[i].section < out[j].section
		}
		if out[i].kind != out[j].kind {
			return out[i].kind < out[j].kind
		}
		if out[i].module != out[j].module {
			return out[i].module < out[j].module
		}
		return strings.ToLower(out[i].text) < strings.ToLower(out[j].text)
	})
	return out
}

func checkUnsortedImports(c *checker) {
	l := c.layout()
	var extra []importLine
	if c.absorbsRequired() {
		for _, text := range c.missingRequired() {
			imp, _ := parseImportLine(text)
			extra = append(extra, imp)
		}
	}
	for i, block := range l.blocks {
		lines := block.lines
		if i == 0 && len(extra) > 0 {
			lines = append(append([]importLine(nil), lines...), extra...)
		}
		sorted := sortedBlock(lines)
		texts := make([]string, len(sorted))
		for j, s := range sorted {
			texts[j] = s.text
		}
		if strings.Join(texts, "\n") == block.text {
			continue
		}
		nl := c.file.Newline()
		want := strings.Join(texts, nl)
		if block.endsNewline {
			want += nl
		}
		diag.ReportWarning(c, rules.UnsortedImports, block.span, "Import block is un-sorted or un-formatted").
			WithFix(fix.ReplaceSpan("Organize imports", block.span, want, c.file.Text(block.span))).
			Emit()
	}
}

func checkRequiredImports(c *checker) {
	l := c.layout()
	absorbed := c.absorbsRequired()
	at := c.span(l.insertAt, l.insertAt)
	for _, text := range c.missingRequired() {
		b := diag.ReportWarning(c, rules.MissingRequiredImport, at, fmt.Sprintf("Missing required import: `%s`", text))
		if !absorbed {
			nl := c.file.Newline()
			insert := text + nl
			if l.insertAt == c.file.Size() && l.insertAt > 0 && c.file.Content[l.insertAt-1] != '\n' {
				insert = nl + insert
			}
			b.WithFix(fix.InsertText(fmt.Sprintf("Insert required import: `%s`", text), at, insert))
		}
		b.Emit()
	}
}
