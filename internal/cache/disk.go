// Package cache stores lint results on disk keyed by file content and
// settings so unchanged files are not re-analyzed by the CLI.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"lintls/internal/diag"
	"lintls/internal/rules"
	"lintls/internal/source"
)

// Current schema version - increment when Entry format changes
const schemaVersion uint16 = 1

// Key identifies one analysis result.
type Key [32]byte

// KeyFor derives the key from the file content hash and the settings fingerprint.
func KeyFor(file *source.File, settings rules.Settings) Key {
	h := sha256.New()
	var schema [2]byte
	binary.BigEndian.PutUint16(schema[:], schemaVersion)
	h.Write(schema[:])
	h.Write(file.Hash[:])
	fp := settings.Fingerprint()
	h.Write(fp[:])
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Entry is the on-disk payload.
type Entry struct {
	Schema      uint16
	Path        string
	Diagnostics []Diagnostic
}

// Diagnostic is diag.Diagnostic without the file id; spans are byte offsets.
type Diagnostic struct {
	Rule     string
	Severity uint8
	Message  string
	Start    uint32
	End      uint32
	Fix      *Fix
}

type Fix struct {
	Title         string
	Applicability uint8
	Edits         []Edit
}

type Edit struct {
	Start   uint32
	End     uint32
	NewText string
	OldText string
}

// DiskCache is safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes a cache under $XDG_CACHE_HOME/app (or ~/.cache/app).
func Open(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir initializes a cache rooted at dir.
func OpenDir(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Key) string {
	hexKey := key.String()
	return filepath.Join(c.dir, "lint", hexKey[:2], hexKey+".mp")
}

// Put writes diagnostics for key, replacing the previous entry atomically.
func (c *DiskCache) Put(key Key, path string, diagnostics []diag.Diagnostic) error {
	if c == nil {
		return nil
	}
	entry := Entry{Schema: schemaVersion, Path: path, Diagnostics: encodeDiagnostics(diagnostics)}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(&entry); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Get returns the cached diagnostics for key bound to file. A stale schema
// counts as a miss.
func (c *DiskCache) Get(key Key, file *source.File) ([]diag.Diagnostic, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var entry Entry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return nil, false, err
	}
	if entry.Schema != schemaVersion {
		return nil, false, nil
	}
	return decodeDiagnostics(entry.Diagnostics, file), true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

func encodeDiagnostics(in []diag.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, len(in))
	for i, d := range in {
		out[i] = Diagnostic{
			Rule:     d.Rule,
			Severity: uint8(d.Severity),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		if d.Fix == nil {
			continue
		}
		fix := &Fix{Title: d.Fix.Title, Applicability: uint8(d.Fix.Applicability)}
		for _, e := range d.Fix.Edits {
			fix.Edits = append(fix.Edits, Edit{Start: e.Span.Start, End: e.Span.End, NewText: e.NewText, OldText: e.OldText})
		}
		out[i].Fix = fix
	}
	return out
}

func decodeDiagnostics(in []Diagnostic, file *source.File) []diag.Diagnostic {
	span := func(start, end uint32) source.Span {
		return source.Span{File: file.ID, Start: start, End: end}
	}
	out := make([]diag.Diagnostic, len(in))
	for i, d := range in {
		out[i] = diag.New(diag.Severity(d.Severity), d.Rule, span(d.Start, d.End), d.Message)
		if d.Fix == nil {
			continue
		}
		fix := diag.Fix{Title: d.Fix.Title, Applicability: diag.Applicability(d.Fix.Applicability)}
		for _, e := range d.Fix.Edits {
			fix.Edits = append(fix.Edits, diag.TextEdit{Span: span(e.Start, e.End), NewText: e.NewText, OldText: e.OldText})
		}
		out[i] = out[i].WithFix(fix)
	}
	return out
}
