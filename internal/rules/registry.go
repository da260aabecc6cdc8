package rules

import (
	"fmt"
	"sort"
)

// Linter groups rules by their origin.
type Linter uint8

const (
	LinterIsort Linter = iota + 1
	LinterPycodestyle
	LinterEradicate
)

func (l Linter) String() string {
	switch l {
	case LinterIsort:
		return "isort"
	case LinterPycodestyle:
		return "pycodestyle"
	case LinterEradicate:
		return "eradicate"
	}
	return "unknown"
}

// Rule describes one registered check.
type Rule struct {
	Code    string
	Name    string
	Linter  Linter
	Fixable bool
}

func (r Rule) String() string {
	return r.Code
}

// Rule codes known to the registry.
const (
	UnsortedImports       = "I001"
	MissingRequiredImport = "I002"
	TrailingWhitespace    = "W291"
	MissingNewlineAtEOF   = "W292"
	NoneComparison        = "E711"
	CommentedOutCode      = "ERA001"
)

// registry order is the order in which the linter runs rules.
var registry = []Rule{
	{Code: UnsortedImports, Name: "unsorted-imports", Linter: LinterIsort, Fixable: true},
	{Code: MissingRequiredImport, Name: "missing-required-import", Linter: LinterIsort, Fixable: true},
	{Code: NoneComparison, Name: "none-comparison", Linter: LinterPycodestyle, Fixable: true},
	{Code: TrailingWhitespace, Name: "trailing-whitespace", Linter: LinterPycodestyle, Fixable: true},
	{Code: MissingNewlineAtEOF, Name: "missing-newline-at-end-of-file", Linter: LinterPycodestyle, Fixable: true},
	{Code: CommentedOutCode, Name: "commented-out-code", Linter: LinterEradicate, Fixable: true},
}

var byCode = func() map[string]int {
	m := make(map[string]int, len(registry))
	for i, r := range registry {
		if _, dup := m[r.Code]; dup {
			panic(fmt.Sprintf("rules: duplicate rule code %s", r.Code))
		}
		m[r.Code] = i
	}
	return m
}()

// FromCode looks a rule up by its code.
func FromCode(code string) (Rule, bool) {
	idx, ok := byCode[code]
	if !ok {
		return Rule{}, false
	}
	return registry[idx], true
}

// MustFromCode is FromCode for codes baked into the program; it panics on unknown codes.
func MustFromCode(code string) Rule {
	r, ok := FromCode(code)
	if !ok {
		panic(fmt.Sprintf("rules: %s is not a registered rule code", code))
	}
	return r
}

// All returns every registered rule in run order.
func All() []Rule {
	return append([]Rule(nil), registry...)
}

// order returns the run position of a rule code, or -1.
func order(code string) int {
	if idx, ok := byCode[code]; ok {
		return idx
	}
	return -1
}

func sortByOrder(codes []string) {
	sort.SliceStable(codes, func(i, j int) bool {
		return order(codes[i]) < order(codes[j])
	})
}
