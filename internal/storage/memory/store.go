// Package memory is an in-process storage.Provider for tests and for
// embedding the repositories without a profile on disk.
package memory

import (
	"context"
	"sort"
	"sync"
)

type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	loaded bool

	// FailWrites, when set, is returned by every SetRaw and Remove call.
	FailWrites error
	// Offline, when set, is returned by every call before touching data.
	Offline error
}

func New() *Store {
	return &Store{values: make(map[string][]byte), loaded: true}
}

func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string][]byte)
	}
	s.loaded = true
	return nil
}

func (s *Store) Load(ctx context.Context) error {
	return s.Init(ctx)
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Path() string {
	return ":memory:"
}

func (s *Store) GetRaw(ctx context.Context, key string) ([]byte, bool, error) {
	if s.Offline != nil {
		return nil, false, s.Offline
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) SetRaw(ctx context.Context, key string, value []byte) error {
	if s.Offline != nil {
		return s.Offline
	}
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if s.Offline != nil {
		return s.Offline
	}
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Raw returns the stored bytes for key without decoding, for assertions.
func (s *Store) Raw(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return string(v), ok
}

// SetString stores value verbatim, bypassing encoding. Tests use it to
// plant corrupt data.
func (s *Store) SetString(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = []byte(value)
}
