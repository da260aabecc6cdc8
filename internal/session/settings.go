package session

import (
	"encoding/json"
	"slices"

	"lintls/internal/rules"
)

// ClientSettings arrive in initializationOptions and
// workspace/didChangeConfiguration, either bare or under a "lintls" key.
// Nil fields keep the server defaults.
type ClientSettings struct {
	Lint            *LintSettings            `json:"lint,omitempty"`
	OrganizeImports *OrganizeImportsSettings `json:"organizeImports,omitempty"`
	FixAll          *bool                    `json:"fixAll,omitempty"`
	Trace           *bool                    `json:"trace,omitempty"`
}

type LintSettings struct {
	Select          []string `json:"select,omitempty"`
	RequiredImports []string `json:"requiredImports,omitempty"`
	LineLength      *int     `json:"lineLength,omitempty"`
}

type OrganizeImportsSettings struct {
	Enabled *bool    `json:"enabled,omitempty"`
	Rules   []string `json:"rules,omitempty"`
}

type wrappedSettings struct {
	Lintls *ClientSettings `json:"lintls"`
}

// ParseClientSettings decodes raw settings. Empty input yields zero settings.
func ParseClientSettings(raw json.RawMessage) (ClientSettings, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return ClientSettings{}, nil
	}
	var wrapped wrappedSettings
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return ClientSettings{}, err
	}
	if wrapped.Lintls != nil {
		return *wrapped.Lintls, nil
	}
	var settings ClientSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return ClientSettings{}, err
	}
	return settings, nil
}

// ResolvedSettings is the effective configuration of one document.
type ResolvedSettings struct {
	Linter               rules.Settings
	OrganizeImportsCodes []string
	FixAll               bool
	OrganizeImports      bool
}

// DefaultResolvedSettings is used before the client sends any settings.
func DefaultResolvedSettings() ResolvedSettings {
	return ResolvedSettings{
		Linter:          rules.DefaultSettings(),
		FixAll:          true,
		OrganizeImports: true,
	}
}

// Clone returns a copy that shares no slices with s.
func (s ResolvedSettings) Clone() ResolvedSettings {
	s.Linter = s.Linter.Clone()
	s.OrganizeImportsCodes = slices.Clone(s.OrganizeImportsCodes)
	return s
}

// Resolve applies c on top of base. Invalid rule selectors are reported
// through warn and leave the corresponding base value in place.
func (c ClientSettings) Resolve(base ResolvedSettings, warn func(format string, args ...any)) ResolvedSettings {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	out := base.Clone()
	if c.Lint != nil {
		if c.Lint.Select != nil {
			if set, err := rules.ParseSelection(c.Lint.Select); err != nil {
				warn("lint.select: %v", err)
			} else {
				out.Linter = out.Linter.WithRules(set)
			}
		}
		if c.Lint.RequiredImports != nil {
			out.Linter = out.Linter.WithRequiredImports(c.Lint.RequiredImports)
		}
		if c.Lint.LineLength != nil {
			if *c.Lint.LineLength > 0 {
				out.Linter.LineLength = *c.Lint.LineLength
			} else {
				warn("lint.lineLength: must be positive, got %d", *c.Lint.LineLength)
			}
		}
	}
	if c.OrganizeImports != nil {
		if c.OrganizeImports.Enabled != nil {
			out.OrganizeImports = *c.OrganizeImports.Enabled
		}
		if c.OrganizeImports.Rules != nil {
			if set, err := rules.ParseSelection(c.OrganizeImports.Rules); err != nil {
				warn("organizeImports.rules: %v", err)
			} else {
				out.OrganizeImportsCodes = set.Codes()
			}
		}
	}
	if c.FixAll != nil {
		out.FixAll = *c.FixAll
	}
	return out
}
