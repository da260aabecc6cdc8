package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"lintls/internal/config"
	"lintls/internal/fix"
	"lintls/internal/source"
)

// ErrDocumentNotFound is returned for URIs that are not open.
var ErrDocumentNotFound = errors.New("document not found")

// TextChange is one textDocument/didChange content change. A nil Range
// replaces the whole document.
type TextChange struct {
	Range *source.Range
	Text  string
}

type document struct {
	text    string
	version int32
}

// Index is the store of open documents. It is safe for concurrent use;
// snapshots taken from it never observe later edits.
type Index struct {
	mu       sync.RWMutex
	docs     map[string]*document
	settings ResolvedSettings
	encoding source.PositionEncoding
	configs  *config.Store
}

// NewIndex creates an empty index. configs may be nil to ignore lintls.toml.
func NewIndex(configs *config.Store) *Index {
	return &Index{
		docs:     make(map[string]*document),
		settings: DefaultResolvedSettings(),
		configs:  configs,
	}
}

// SetEncoding sets the negotiated position encoding used to apply changes
// and stamped into snapshots.
func (i *Index) SetEncoding(enc source.PositionEncoding) {
	i.mu.Lock()
	i.encoding = enc
	i.mu.Unlock()
}

// SetSettings replaces the client settings of the session.
func (i *Index) SetSettings(settings ResolvedSettings) {
	settings = settings.Clone()
	i.mu.Lock()
	i.settings = settings
	i.mu.Unlock()
	if i.configs != nil {
		i.configs.Invalidate()
	}
}

// Settings returns a copy of the client settings of the session.
func (i *Index) Settings() ResolvedSettings {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.settings.Clone()
}

// Open stores a document, replacing any previous content.
func (i *Index) Open(uri string, version int32, text string) {
	i.mu.Lock()
	i.docs[uri] = &document{text: text, version: version}
	i.mu.Unlock()
}

// Update applies changes in order and records version.
func (i *Index) Update(uri string, version int32, changes []TextChange) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	doc, ok := i.docs[uri]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}
	text := doc.text
	for _, change := range changes {
		text = applyChange(text, change, i.encoding)
	}
	i.docs[uri] = &document{text: text, version: version}
	return nil
}

func applyChange(text string, change TextChange, enc source.PositionEncoding) string {
	if change.Range == nil {
		return change.Text
	}
	f := source.NewFile("", []byte(text), source.FileVirtual)
	start := f.OffsetAt(change.Range.Start, enc)
	end := f.OffsetAt(change.Range.End, enc)
	if end < start {
		end = start
	}
	return text[:start] + change.Text + text[end:]
}

// Close forgets a document and reports whether it was open.
func (i *Index) Close(uri string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.docs[uri]
	delete(i.docs, uri)
	return ok
}

// URIs lists open documents in sorted order.
func (i *Index) URIs() []string {
	i.mu.RLock()
	out := make([]string, 0, len(i.docs))
	for uri := range i.docs {
		out = append(out, uri)
	}
	i.mu.RUnlock()
	sort.Strings(out)
	return out
}

// DocumentSnapshot is an immutable view of one document at one version
// together with the settings that govern it.
type DocumentSnapshot struct {
	URI      string
	Version  int32
	File     *source.File
	Settings ResolvedSettings
	Encoding source.PositionEncoding
	// ConfigErr is set when lintls.toml could not be applied; Settings then
	// holds the client settings alone.
	ConfigErr error
}

// Document returns the fix-layer view of the snapshot.
func (s *DocumentSnapshot) Document() fix.Document {
	return fix.Document{URI: s.URI, Version: s.Version, File: s.File, Encoding: s.Encoding}
}

// Snapshot captures the current state of uri.
func (i *Index) Snapshot(uri string) (*DocumentSnapshot, error) {
	i.mu.RLock()
	doc, ok := i.docs[uri]
	var (
		text     string
		version  int32
		settings ResolvedSettings
		enc      = i.encoding
	)
	if ok {
		text, version = doc.text, doc.version
		settings = i.settings.Clone()
	}
	i.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}
	path := URIToPath(uri)
	snap := &DocumentSnapshot{
		URI:      uri,
		Version:  version,
		File:     source.NewFile(path, []byte(text), source.FileVirtual),
		Settings: settings,
		Encoding: enc,
	}
	if i.configs != nil && path != "" {
		snap.Settings, snap.ConfigErr = i.applyProjectConfig(path, settings)
	}
	return snap, nil
}

func (i *Index) applyProjectConfig(path string, settings ResolvedSettings) (ResolvedSettings, error) {
	cfg, err := i.configs.ForPath(path)
	if err != nil || cfg == nil {
		return settings, err
	}
	linter, codes, err := cfg.Settings(settings.Linter)
	if err != nil {
		return settings, err
	}
	out := settings.Clone()
	out.Linter = linter
	if codes != nil {
		out.OrganizeImportsCodes = codes
	}
	return out, nil
}
