package lint

import (
	"regexp"
	"strings"

	"lintls/internal/diag"
	"lintls/internal/fix"
	"lintls/internal/rules"
)

var (
	codeStatement = regexp.MustCompile(`^(import|from|def|class|return|raise|yield|del|assert|if|elif|for|while|with|try|except|finally|else)\b`)
	codeAssign    = regexp.MustCompile(`^[A-Za-z_][\w.\[\]'"]*\s*(=[^=]|[-+*/%|&]=|\()`)
	codeCall      = regexp.MustCompile(`^[A-Za-z_][\w.]*\(.*\)$`)
)

var pragmaPrefixes = []string{"noqa", "type:", "pylint", "pyright:", "mypy:", "fmt:", "isort:", "todo", "fixme", "xxx", "-*-", "!"}

// looksLikeCode is a conservative heuristic; prose with a trailing period is never code.
func looksLikeCode(body string) bool {
	if body == "" || strings.HasSuffix(body, ".") {
		return false
	}
	lower := strings.ToLower(body)
	for _, p := range pragmaPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	if codeCall.MatchString(body) || codeAssign.MatchString(body) {
		return true
	}
	if m := codeStatement.FindString(body); m != "" {
		rest := strings.TrimSpace(body[len(m):])
		return rest == "" || strings.HasSuffix(body, ":") || m == "import" || (m == "from" && strings.Contains(rest, " import ")) || m == "return"
	}
	return false
}

func checkCommentedOutCode(c *checker) {
	f := c.file
	for i := 0; i < f.LineCount(); i++ {
		line := f.Line(i)
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		body := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		if !looksLikeCode(body) {
			continue
		}
		ls := f.LineSpan(i)
		del := ls
		if i+1 < f.LineCount() {
			del.End = f.LineSpan(i + 1).Start
		}
		diag.ReportWarning(c, rules.CommentedOutCode, ls, "Found commented-out code").
			WithFix(fix.DeleteSpan("Remove commented-out code", del, f.Text(del), fix.DisplayOnly())).
			Emit()
	}
}
