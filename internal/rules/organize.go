package rules

// DefaultOrganizeImportsCodes returns the rules that make up "organize
// imports" unless the client or project configuration overrides them.
func DefaultOrganizeImportsCodes() []string {
	return []string{UnsortedImports, MissingRequiredImport}
}

// ForImports derives settings whose active rules are exactly codes, leaving
// every other parameter of s as is. s itself is not modified.
//
// codes are expected to be resolved already; an unknown code is a programming
// error and panics.
func ForImports(s Settings, codes []string) Settings {
	if len(codes) == 0 {
		codes = DefaultOrganizeImportsCodes()
	}
	selected := make([]Rule, 0, len(codes))
	for _, code := range codes {
		selected = append(selected, MustFromCode(code))
	}
	return s.WithRules(NewRuleSet(selected...))
}
