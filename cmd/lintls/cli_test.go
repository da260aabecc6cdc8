package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lintls/internal/cache"
	"lintls/internal/fix"
	"lintls/internal/rules"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testSettings(t *testing.T, configPath string, selectors ...string) *settingsSource {
	t.Helper()
	src, err := newSettingsSource(configPath, selectors)
	if err != nil {
		t.Fatalf("newSettingsSource: %v", err)
	}
	return src
}

func TestCollectFilesSkipsHiddenAndCaches(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "b.py", "")
	writeTestFile(t, dir, "a.pyi", "")
	writeTestFile(t, dir, "notes.txt", "")
	writeTestFile(t, dir, ".venv/lib.py", "")
	writeTestFile(t, dir, "pkg/__pycache__/c.py", "")
	writeTestFile(t, dir, "pkg/d.py", "")
	script := writeTestFile(t, dir, "script", "")

	files, err := collectFiles([]string{dir, script, filepath.Join(dir, "b.py")})
	if err != nil {
		t.Fatalf("collectFiles: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.pyi"),
		filepath.Join(dir, "b.py"),
		filepath.Join(dir, "pkg", "d.py"),
		script,
	}
	if strings.Join(files, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected files:\n%v\nwant\n%v", files, want)
	}
}

func TestSettingsSourceUsesDiscoveredConfig(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "lintls.toml", "[lint]\nselect = [\"W291\"]\n\n[organize-imports]\nrules = [\"I001\"]\n")
	path := writeTestFile(t, dir, "pkg/main.py", "")

	settings, codes, err := testSettings(t, "").forFile(path)
	if err != nil {
		t.Fatalf("forFile: %v", err)
	}
	if got := settings.Rules.Codes(); len(got) != 1 || got[0] != rules.TrailingWhitespace {
		t.Fatalf("unexpected rules %v", got)
	}
	if len(codes) != 1 || codes[0] != rules.UnsortedImports {
		t.Fatalf("unexpected organize codes %v", codes)
	}

	settings, _, err = testSettings(t, "", "E711").forFile(path)
	if err != nil {
		t.Fatalf("forFile: %v", err)
	}
	if got := settings.Rules.Codes(); len(got) != 1 || got[0] != rules.NoneComparison {
		t.Fatalf("--select must override configuration, got %v", got)
	}
}

func TestCheckFilesUsesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "main.py", "x = 1  \n")
	dc, err := cache.OpenDir(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	opts := checkOptions{settings: testSettings(t, ""), cache: dc, jobs: 2}

	for run := 0; run < 2; run++ {
		results, err := checkFiles(context.Background(), []string{path}, opts)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if len(results) != 1 || len(results[0].diagnostics) != 1 || results[0].diagnostics[0].Rule != rules.TrailingWhitespace {
			t.Fatalf("run %d: unexpected results %+v", run, results)
		}
		if results[0].diagnostics[0].Fix == nil {
			t.Fatalf("run %d: fix lost", run)
		}
	}
	entries, err := filepath.Glob(filepath.Join(dir, "cache", "lint", "*", "*.mp"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one cache entry, got %v (%v)", entries, err)
	}
}

func TestFixOneAppliesSafeFixesOnly(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "main.py", "import sys\nimport os\nif x == None:  \n    pass")
	opts := fixOptions{settings: testSettings(t, ""), filter: fix.FilterSafeOnly}

	res, err := fixOne(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("fixOne: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "import os\nimport sys\nif x == None:\n    pass\n"
	if string(got) != want {
		t.Fatalf("unexpected content:\n%q\nwant\n%q", got, want)
	}
	if len(res.applied) != 3 {
		t.Fatalf("expected I001, W291 and W292 fixes, got %+v", res.applied)
	}

	var out bytes.Buffer
	if err := writeFixReport(&out, []fixResult{res}, opts); err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out.String(), "Fixed 3 error(s) in 1 file(s).") || !strings.Contains(out.String(), "1 unsafe fix(es) available") {
		t.Fatalf("unexpected report:\n%s", out.String())
	}
}

func TestFixOneKeepsBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "main.py", "\ufeffimport sys\r\nimport os\r\nx = 1 \r\n")
	opts := fixOptions{settings: testSettings(t, ""), filter: fix.FilterSafeOnly}

	res, err := fixOne(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("fixOne: %v", err)
	}
	if len(res.applied) != 2 {
		t.Fatalf("expected I001 and W291 fixes, got %+v", res.applied)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := "\ufeffimport os\r\nimport sys\r\nx = 1\r\n"; string(got) != want {
		t.Fatalf("unexpected content:\n%q\nwant\n%q", got, want)
	}

	clean := writeTestFile(t, dir, "clean.py", "import os\r\nimport sys\r\n")
	res, err = fixOne(context.Background(), clean, opts)
	if err != nil {
		t.Fatalf("fixOne clean: %v", err)
	}
	if len(res.applied) != 0 {
		t.Fatalf("sorted CRLF file must need no fixes, got %+v", res.applied)
	}
}

func TestFixOneOrganizeImportsDryRun(t *testing.T) {
	dir := t.TempDir()
	content := "import sys\nimport os\nx = 1  \n"
	path := writeTestFile(t, dir, "main.py", content)
	opts := fixOptions{settings: testSettings(t, ""), filter: fix.FilterAll, organizeImports: true, dryRun: true}

	res, err := fixOne(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("fixOne: %v", err)
	}
	if string(res.content) != "import os\nimport sys\nx = 1  \n" {
		t.Fatalf("organize imports must leave other rules alone: %q", res.content)
	}
	if got, _ := os.ReadFile(path); string(got) != content {
		t.Fatalf("dry run wrote the file: %q", got)
	}
}

func TestRenderVersionJSON(t *testing.T) {
	var out bytes.Buffer
	info := versionInfo{Version: "1.2.3"}
	if err := renderVersionJSON(&out, info, versionOptions{showHash: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "lintls" || payload.Version != "1.2.3" || payload.GitCommit != "unknown" || payload.BuildDate != "" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}
