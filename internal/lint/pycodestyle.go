package lint

import (
	"strings"

	"lintls/internal/diag"
	"lintls/internal/fix"
	"lintls/internal/rules"
)

// codePart cuts a trailing comment and blanks string literal contents so
// operators inside strings are not matched. Byte offsets are preserved.
func codePart(line string) string {
	buf := []byte(line)
	var quote byte
	for i := 0; i < len(buf); i++ {
		ch := buf[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
				continue
			}
			if ch == '\\' && i+1 < len(buf) {
				buf[i] = ' '
				i++
			}
			buf[i] = ' '
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '#':
			return string(buf[:i])
		}
	}
	return string(buf)
}

func isIdentByte(ch byte) bool {
	return ch == '_' || ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

// comparesToNone reports whether the operator at op has a bare None operand.
func comparesToNone(code string, op int) bool {
	right := strings.TrimLeft(code[op+2:], " \t")
	if strings.HasPrefix(right, "None") && (len(right) == 4 || !isIdentByte(right[4])) {
		return true
	}
	left := strings.TrimRight(code[:op], " \t")
	if strings.HasSuffix(left, "None") {
		n := len(left) - 4
		return n == 0 || !isIdentByte(left[n-1])
	}
	return false
}

func checkNoneComparison(c *checker) {
	f := c.file
	for i := 0; i < f.LineCount(); i++ {
		code := codePart(f.Line(i))
		base := f.LineSpan(i).Start
		for op := 0; op+1 < len(code); op++ {
			if code[op+1] != '=' || code[op] != '=' && code[op] != '!' {
				continue
			}
			if op > 0 && strings.ContainsRune("=<>!", rune(code[op-1])) || op+2 < len(code) && code[op+2] == '=' {
				op++
				continue
			}
			if !comparesToNone(code, op) {
				op++
				continue
			}
			start := base + off(op)
			sp := c.span(start, start+2)
			msg, repl := "Comparison to `None` should be `cond is None`", "is"
			if code[op] == '!' {
				msg, repl = "Comparison to `None` should be `cond is not None`", "is not"
			}
			diag.ReportError(c, rules.NoneComparison, sp, msg).
				WithFix(fix.ReplaceSpan("Replace with `"+repl+"`", sp, repl, code[op:op+2], fix.Unsafe())).
				Emit()
			op++
		}
	}
}

func checkTrailingWhitespace(c *checker) {
	f := c.file
	for i := 0; i < f.LineCount(); i++ {
		line := f.Line(i)
		trimmed := strings.TrimRight(line, " \t\f")
		if trimmed == line || trimmed == "" {
			continue
		}
		ls := f.LineSpan(i)
		sp := c.span(ls.Start+off(len(trimmed)), ls.End)
		diag.ReportWarning(c, rules.TrailingWhitespace, sp, "Trailing whitespace").
			WithFix(fix.DeleteSpan("Remove trailing whitespace", sp, line[len(trimmed):])).
			Emit()
	}
}

func checkMissingNewline(c *checker) {
	f := c.file
	size := f.Size()
	if size == 0 || f.Content[size-1] == '\n' {
		return
	}
	at := c.span(size, size)
	diag.ReportWarning(c, rules.MissingNewlineAtEOF, at, "No newline at end of file").
		WithFix(fix.InsertText("Add trailing newline", at, f.Newline())).
		Emit()
}
