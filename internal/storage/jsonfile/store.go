// Package jsonfile keeps the profile in a single human-readable JSON file.
// Every read goes back to disk so writes made by another process are seen,
// the way browser storage is shared between tabs.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/julianstephens/tarot/internal/logger"
	"github.com/julianstephens/tarot/internal/storage"
)

const fileVersion = 1

// document is the on-disk layout. Values are kept as strings holding JSON
// text, so one corrupt value never poisons the others.
type document struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

type Store struct {
	path   string
	mu     sync.Mutex
	loaded bool
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) Init(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		s.loaded = true
		return nil
	}

	if err := s.write(&document{Version: fileVersion, Values: map[string]string{}}); err != nil {
		return err
	}
	s.loaded = true
	return nil
}

func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrNotInitialized
		}
		return fmt.Errorf("failed to read profile: %w", err)
	}
	s.loaded = true
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Path() string {
	return s.path
}

// read loads the document. A file that cannot be parsed is treated as empty.
func (s *Store) read() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{Version: fileVersion, Values: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		logger.Warn("Profile file is corrupt, treating as empty", "path", s.path, "error", err)
		s.quarantine(data)
		return &document{Version: fileVersion, Values: map[string]string{}}, nil
	}
	if doc.Values == nil {
		doc.Values = map[string]string{}
	}
	return doc, nil
}

// quarantine keeps a copy of an unreadable profile next to it before the
// next write replaces it.
func (s *Store) quarantine(data []byte) {
	dst := s.path + ".corrupt"
	if err := os.WriteFile(dst, data, 0600); err != nil {
		logger.Warn("Failed to keep copy of corrupt profile", "path", dst, "error", err)
	}
}

func (s *Store) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write profile: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

func (s *Store) GetRaw(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, false, storage.ErrNotLoaded
	}

	doc, err := s.read()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc.Values[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (s *Store) SetRaw(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return storage.ErrNotLoaded
	}

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Values[key] = string(value)
	return s.write(doc)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return storage.ErrNotLoaded
	}

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc.Values[key]; !ok {
		return nil
	}
	delete(doc.Values, key)
	return s.write(doc)
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, storage.ErrNotLoaded
	}

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(doc.Values))
	for k := range doc.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
