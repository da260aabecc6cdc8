package lsp

import "strings"

const (
	kindQuickFix              = "quickfix"
	kindSourceFixAll          = "source.fixAll"
	kindSourceOrganizeImports = "source.organizeImports"

	serverName = "lintls"
)

// Kinds advertised in codeActionProvider and used for listed actions.
var (
	kindFixAllLintls          = kindSourceFixAll + "." + serverName
	kindOrganizeImportsLintls = kindSourceOrganizeImports + "." + serverName
)

// codeActionKind is a code action kind the server knows how to resolve.
type codeActionKind uint8

const (
	actionSourceFixAll codeActionKind = iota + 1
	actionSourceOrganizeImports
)

func (k codeActionKind) String() string {
	switch k {
	case actionSourceFixAll:
		return kindFixAllLintls
	case actionSourceOrganizeImports:
		return kindOrganizeImportsLintls
	default:
		return "unknown"
	}
}

// classifyCodeActionKind maps the kind of an action sent to
// codeAction/resolve. Quick fixes are always listed with their edit, so a
// resolve request for one is a client error.
func classifyCodeActionKind(kind string) (codeActionKind, error) {
	switch kind {
	case kindSourceFixAll, kindFixAllLintls:
		return actionSourceFixAll, nil
	case kindSourceOrganizeImports, kindOrganizeImportsLintls:
		return actionSourceOrganizeImports, nil
	}
	if kind == kindQuickFix || strings.HasPrefix(kind, kindQuickFix+".") {
		return 0, invalidParams("code actions of kind %q should not need additional resolution", kind)
	}
	if kind == "" {
		return 0, invalidParams("code action has no kind")
	}
	return 0, invalidParams("unknown code action kind %q", kind)
}

// kindAllowed applies the context.only filter of a codeAction request.
// A requested kind matches itself and every kind nested under it.
func kindAllowed(kind string, only []string) bool {
	if len(only) == 0 {
		return true
	}
	for _, want := range only {
		if kind == want || strings.HasPrefix(kind, want+".") {
			return true
		}
	}
	return false
}
