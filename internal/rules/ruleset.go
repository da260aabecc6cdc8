package rules

import (
	"fmt"
	"strings"
)

// RuleSet is an immutable set of registered rules kept in run order.
// The zero value is the empty set.
type RuleSet struct {
	codes []string
}

// NewRuleSet builds a set from registered rules; duplicates collapse.
func NewRuleSet(rules ...Rule) RuleSet {
	seen := make(map[string]struct{}, len(rules))
	codes := make([]string, 0, len(rules))
	for _, r := range rules {
		if _, ok := seen[r.Code]; ok {
			continue
		}
		seen[r.Code] = struct{}{}
		codes = append(codes, r.Code)
	}
	sortByOrder(codes)
	return RuleSet{codes: codes}
}

// ParseSelection builds a set from user supplied codes. Unknown codes are an
// error because they come from configuration; prefix selectors such as "I"
// or "W29" select every registered code starting with them.
func ParseSelection(selectors []string) (RuleSet, error) {
	selected := make([]Rule, 0, len(selectors))
	var unknown []string
	for _, sel := range selectors {
		sel = strings.ToUpper(strings.TrimSpace(sel))
		if sel == "" {
			continue
		}
		if sel == "ALL" {
			selected = append(selected, registry...)
			continue
		}
		if r, ok := FromCode(sel); ok {
			selected = append(selected, r)
			continue
		}
		matched := false
		for _, r := range registry {
			if strings.HasPrefix(r.Code, sel) {
				selected = append(selected, r)
				matched = true
			}
		}
		if !matched {
			unknown = append(unknown, sel)
		}
	}
	if len(unknown) > 0 {
		return RuleSet{}, fmt.Errorf("unknown rule selector(s): %s", strings.Join(unknown, ", "))
	}
	return NewRuleSet(selected...), nil
}

// Contains reports whether code is in the set.
func (s RuleSet) Contains(code string) bool {
	for _, c := range s.codes {
		if c == code {
			return true
		}
	}
	return false
}

// Codes returns a copy of the codes in run order.
func (s RuleSet) Codes() []string {
	return append([]string(nil), s.codes...)
}

func (s RuleSet) Len() int {
	return len(s.codes)
}

// Equal reports whether both sets hold the same rules.
func (s RuleSet) Equal(other RuleSet) bool {
	if len(s.codes) != len(other.codes) {
		return false
	}
	for i := range s.codes {
		if s.codes[i] != other.codes[i] {
			return false
		}
	}
	return true
}

func (s RuleSet) String() string {
	return "[" + strings.Join(s.codes, ",") + "]"
}
