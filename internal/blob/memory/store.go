// Package memory provides an in-memory blob store. Data is lost on restart;
// it exists for tests and for running the CLI in demo mode.
package memory

import (
	"context"
	"sync"

	"github.com/dvoronin/spendlog/internal/blob"
)

// Store is a mutex-guarded map of key to document. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewStore creates an empty in-memory blob store.
func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

// Get implements the blob.Store interface.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	return value, ok, nil
}

// Set implements the blob.Store interface.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Remove implements the blob.Store interface.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Ensure Store implements the blob.Store interface.
var _ blob.Store = (*Store)(nil)
