package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"lintls/internal/config"
	"lintls/internal/rules"
	"lintls/internal/source"
)

// settingsSource resolves the rule settings of each checked file: an explicit
// --config file wins over discovery, and --select overrides the selection.
type settingsSource struct {
	store     *config.Store
	fixed     *config.File
	selection *rules.RuleSet
}

func newSettingsSource(configPath string, selectors []string) (*settingsSource, error) {
	src := &settingsSource{store: config.NewStore()}
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		src.fixed = cfg
	}
	if len(selectors) > 0 {
		set, err := rules.ParseSelection(selectors)
		if err != nil {
			return nil, fmt.Errorf("--select: %w", err)
		}
		src.selection = &set
	}
	return src, nil
}

// forFile returns the linter settings and organize-imports codes for path.
func (s *settingsSource) forFile(path string) (rules.Settings, []string, error) {
	cfg := s.fixed
	if cfg == nil {
		var err error
		if cfg, err = s.store.ForPath(path); err != nil {
			return rules.Settings{}, nil, err
		}
	}
	settings, codes, err := cfg.Settings(rules.DefaultSettings())
	if err != nil {
		return rules.Settings{}, nil, err
	}
	if s.selection != nil {
		settings = settings.WithRules(*s.selection)
	}
	return settings, codes, nil
}

// collectFiles expands directories into the Python files below them.
// Hidden directories and __pycache__ are skipped. Explicit file arguments
// are kept whatever their extension.
func collectFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Clean(root))
			continue
		}
		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != root && (strings.HasPrefix(name, ".") || name == "__pycache__") {
					return filepath.SkipDir
				}
				return nil
			}
			if ext := filepath.Ext(path); ext == ".py" || ext == ".pyi" {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, path := range found {
			add(path)
		}
	}
	return files, nil
}

// loadFile reads path without its BOM; line endings stay as written.
func loadFile(path string) (*source.File, error) {
	return source.ReadFile(path)
}

func jobCount(jobs, files int) int {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, files))
}
