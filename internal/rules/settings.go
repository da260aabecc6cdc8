package rules

import (
	"crypto/sha256"
	"encoding/binary"
	"slices"
)

// DefaultLineLength matches the formatter default of most Python projects.
const DefaultLineLength = 88

// Settings is the rule configuration of one analysis run.
//
// Settings is a value type. Copies share nothing mutable: RuleSet is
// immutable and the slice fields are cloned by every method returning a
// modified copy, so a Settings value obtained from a snapshot may be read by
// concurrent resolutions while a derived copy is being built.
type Settings struct {
	Rules           RuleSet
	RequiredImports []string
	LineLength      int
}

// DefaultSettings enables the default rule selection.
func DefaultSettings() Settings {
	return Settings{
		Rules: NewRuleSet(
			MustFromCode(UnsortedImports),
			MustFromCode(NoneComparison),
			MustFromCode(TrailingWhitespace),
			MustFromCode(MissingNewlineAtEOF),
		),
		LineLength: DefaultLineLength,
	}
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	s.RequiredImports = slices.Clone(s.RequiredImports)
	return s
}

// WithRules returns a copy of s with a different active rule set.
func (s Settings) WithRules(set RuleSet) Settings {
	out := s.Clone()
	out.Rules = set
	return out
}

// WithRequiredImports returns a copy of s requiring the given import statements.
func (s Settings) WithRequiredImports(imports []string) Settings {
	out := s.Clone()
	out.RequiredImports = slices.Clone(imports)
	return out
}

// Enabled reports whether the rule code is active.
func (s Settings) Enabled(code string) bool {
	return s.Rules.Contains(code)
}

// Equal reports whether two settings are identical.
func (s Settings) Equal(other Settings) bool {
	return s.Rules.Equal(other.Rules) &&
		s.LineLength == other.LineLength &&
		slices.Equal(s.RequiredImports, other.RequiredImports)
}

// Fingerprint is a stable digest of the settings, used in cache keys.
func (s Settings) Fingerprint() [32]byte {
	h := sha256.New()
	var buf [8]byte
	for _, code := range s.Rules.codes {
		_, _ = h.Write([]byte(code))
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte{1})
	for _, imp := range s.RequiredImports {
		_, _ = h.Write([]byte(imp))
		_, _ = h.Write([]byte{0})
	}
	binary.LittleEndian.PutUint64(buf[:], uint64(s.LineLength)) // #nosec G115 -- only hashed
	_, _ = h.Write(buf[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
