// Package memstore is an in-process Backend. Besides the memory driver it
// is the fake used by tests, which can make reads or writes fail on demand.
package memstore

import (
	"context"
	"sync"
)

type Store struct {
	mu     sync.Mutex
	data   map[string]string
	writes int

	// ReadErr and WriteErr, when set, are returned by every read or write.
	ReadErr  error
	WriteErr error
}

func New() *Store {
	return &Store{data: make(map[string]string)}
}

// Seed stores value under key without counting it as a write.
func (s *Store) Seed(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Raw returns the stored value, bypassing ReadErr.
func (s *Store) Raw(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Writes counts successful and failed SetItem calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Store) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return "", false, s.ReadErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.data[key] = value
	return nil
}

func (s *Store) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	delete(s.data, key)
	return nil
}

func (s *Store) Close() error { return nil }
