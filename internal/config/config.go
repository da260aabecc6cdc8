// Package config loads lintls.toml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"lintls/internal/rules"
)

// FileName is the project configuration file looked up from a document's directory.
const FileName = "lintls.toml"

// File is a parsed lintls.toml.
type File struct {
	Path string
	Root string

	lint            lintSection
	organizeImports organizeSection
	defined         definedKeys
}

type fileConfig struct {
	Lint            lintSection     `toml:"lint"`
	OrganizeImports organizeSection `toml:"organize-imports"`
}

type lintSection struct {
	Select          []string `toml:"select"`
	RequiredImports []string `toml:"required-imports"`
	LineLength      int      `toml:"line-length"`
}

type organizeSection struct {
	Rules []string `toml:"rules"`
}

type definedKeys struct {
	selection       bool
	requiredImports bool
	lineLength      bool
	organizeRules   bool
}

// Find walks up from startDir looking for lintls.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses and validates one configuration file.
func Load(path string) (*File, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	f := &File{
		Path:            path,
		Root:            filepath.Dir(path),
		lint:            cfg.Lint,
		organizeImports: cfg.OrganizeImports,
		defined: definedKeys{
			selection:       meta.IsDefined("lint", "select"),
			requiredImports: meta.IsDefined("lint", "required-imports"),
			lineLength:      meta.IsDefined("lint", "line-length"),
			organizeRules:   meta.IsDefined("organize-imports", "rules"),
		},
	}
	if f.defined.lineLength && cfg.Lint.LineLength <= 0 {
		return nil, fmt.Errorf("%s: [lint].line-length must be positive", path)
	}
	if _, _, err := f.Settings(rules.DefaultSettings()); err != nil {
		return nil, err
	}
	return f, nil
}

// Settings overlays the keys defined in the file onto base and returns the
// organize-imports rule codes; nil codes mean the defaults apply.
func (f *File) Settings(base rules.Settings) (rules.Settings, []string, error) {
	out := base.Clone()
	if f == nil {
		return out, nil, nil
	}
	if f.defined.selection {
		set, err := rules.ParseSelection(f.lint.Select)
		if err != nil {
			return base, nil, fmt.Errorf("%s: [lint].select: %w", f.Path, err)
		}
		out = out.WithRules(set)
	}
	if f.defined.requiredImports {
		out = out.WithRequiredImports(f.lint.RequiredImports)
	}
	if f.defined.lineLength {
		out.LineLength = f.lint.LineLength
	}
	var codes []string
	if f.defined.organizeRules {
		set, err := rules.ParseSelection(f.organizeImports.Rules)
		if err != nil {
			return base, nil, fmt.Errorf("%s: [organize-imports].rules: %w", f.Path, err)
		}
		codes = set.Codes()
	}
	return out, codes, nil
}
