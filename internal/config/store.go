package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store caches loaded configuration files by path and reloads a file when
// its modification time changes.
type Store struct {
	mu      sync.Mutex
	entries map[string]storeEntry
}

type storeEntry struct {
	file    *File
	modTime time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]storeEntry)}
}

// ForPath returns the configuration governing the file at path, or nil when
// no lintls.toml exists above it.
func (s *Store) ForPath(path string) (*File, error) {
	cfgPath, ok, err := Find(filepath.Dir(path))
	if err != nil || !ok {
		return nil, err
	}
	info, err := os.Stat(cfgPath)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	entry, cached := s.entries[cfgPath]
	s.mu.Unlock()
	if cached && entry.modTime.Equal(info.ModTime()) {
		return entry.file, nil
	}
	f, err := Load(cfgPath)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.entries[cfgPath] = storeEntry{file: f, modTime: info.ModTime()}
	s.mu.Unlock()
	return f, nil
}

// Invalidate drops every cached file.
func (s *Store) Invalidate() {
	s.mu.Lock()
	clear(s.entries)
	s.mu.Unlock()
}
