// Package file provides a blob store backed by one file per key inside a
// directory. Writes go through a temp file and rename so a crash mid-write
// never leaves a half-written document behind.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dvoronin/spendlog/internal/blob"
)

// Store persists each key as <dir>/<key>.json.
type Store struct {
	dir string
}

// NewStore creates the directory if needed and returns a store rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("NewStore: creating %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Get implements the blob.Store interface.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, fmt.Errorf("Get: %w", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("Get: reading %q: %w", p, err)
	}
	return string(data), true, nil
}

// Set implements the blob.Store interface using an atomic temp-and-rename
// write.
func (s *Store) Set(ctx context.Context, key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return fmt.Errorf("Set: writing %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("Set: replacing %q: %w", p, err)
	}
	return nil
}

// Remove implements the blob.Store interface.
func (s *Store) Remove(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return fmt.Errorf("Remove: %w", err)
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("Remove: deleting %q: %w", p, err)
	}
	return nil
}

// Ensure Store implements the blob.Store interface.
var _ blob.Store = (*Store)(nil)
