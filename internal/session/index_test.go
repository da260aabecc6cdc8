package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lintls/internal/config"
	"lintls/internal/rules"
	"lintls/internal/source"
)

const testURI = "file:///work/main.py"

func rangeOf(sl, sc, el, ec int) *source.Range {
	return &source.Range{
		Start: source.Position{Line: sl, Character: sc},
		End:   source.Position{Line: el, Character: ec},
	}
}

func TestIndexIncrementalUpdate(t *testing.T) {
	idx := NewIndex(nil)
	idx.Open(testURI, 1, "a = \"😀\"\nb = 2\n")

	// utf-16: the emoji is two code units, the closing quote is at character 7
	err := idx.Update(testURI, 2, []TextChange{
		{Range: rangeOf(0, 7, 0, 8), Text: "'"},
		{Range: rangeOf(1, 4, 1, 5), Text: "3"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	snap, err := idx.Snapshot(testURI)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got := string(snap.File.Content); got != "a = \"😀'\nb = 3\n" {
		t.Fatalf("unexpected content %q", got)
	}
	if snap.Version != 2 {
		t.Fatalf("expected version 2, got %d", snap.Version)
	}
}

func TestIndexUTF8Encoding(t *testing.T) {
	idx := NewIndex(nil)
	idx.SetEncoding(source.EncodingUTF8)
	idx.Open(testURI, 1, "é = 1\n")
	if err := idx.Update(testURI, 2, []TextChange{{Range: rangeOf(0, 2, 0, 2), Text: "x"}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	snap, err := idx.Snapshot(testURI)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got := string(snap.File.Content); got != "éx = 1\n" {
		t.Fatalf("unexpected content %q", got)
	}
	if snap.Encoding != source.EncodingUTF8 {
		t.Fatalf("snapshot must carry the negotiated encoding")
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	idx := NewIndex(nil)
	idx.Open(testURI, 1, "x = 1\n")
	snap, err := idx.Snapshot(testURI)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if err := idx.Update(testURI, 2, []TextChange{{Text: "y = 2\n"}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	idx.SetSettings(ResolvedSettings{Linter: rules.Settings{}})
	if string(snap.File.Content) != "x = 1\n" || snap.Version != 1 {
		t.Fatalf("snapshot observed a later edit: %q v%d", snap.File.Content, snap.Version)
	}
	if !snap.Settings.Linter.Enabled(rules.UnsortedImports) {
		t.Fatalf("snapshot observed later settings")
	}
}

func TestUnknownDocument(t *testing.T) {
	idx := NewIndex(nil)
	if _, err := idx.Snapshot(testURI); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := idx.Update(testURI, 1, nil); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	idx.Open(testURI, 1, "")
	if !idx.Close(testURI) || idx.Close(testURI) {
		t.Fatalf("Close must report whether the document was open")
	}
}

func TestSnapshotAppliesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := "[lint]\nselect = [\"W292\"]\n\n[organize-imports]\nrules = [\"I001\"]\n"
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	uri := PathToURI(filepath.Join(dir, "main.py"))
	idx := NewIndex(config.NewStore())
	idx.Open(uri, 1, "x = 1")
	snap, err := idx.Snapshot(uri)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.ConfigErr != nil {
		t.Fatalf("unexpected config error: %v", snap.ConfigErr)
	}
	if !snap.Settings.Linter.Enabled(rules.MissingNewlineAtEOF) || snap.Settings.Linter.Enabled(rules.UnsortedImports) {
		t.Fatalf("project selection not applied: %v", snap.Settings.Linter.Rules)
	}
	if len(snap.Settings.OrganizeImportsCodes) != 1 {
		t.Fatalf("project organize codes not applied: %v", snap.Settings.OrganizeImportsCodes)
	}
	if !idx.Settings().Linter.Enabled(rules.UnsortedImports) {
		t.Fatalf("session settings were overwritten")
	}
}
