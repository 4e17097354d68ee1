// Package gcs provides a blob store backed by a Google Cloud Storage bucket,
// one object per key. It assumes Application Default Credentials unless a
// credentials file option is passed through.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/dvoronin/spendlog/internal/blob"
)

// Store maps blob keys to objects under an optional prefix in one bucket.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates a storage client and returns a store bound to the bucket.
func New(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs.New: bucket name is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs.New: creating storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket, prefix: prefix}, nil
}

// Close releases the underlying storage client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) object(key string) string {
	if s.prefix == "" {
		return key + ".json"
	}
	return path.Join(s.prefix, key+".json")
}

// Get implements the blob.Store interface.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	rc, err := s.client.Bucket(s.bucket).Object(s.object(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("Get: reading gs://%s/%s: %w", s.bucket, s.object(key), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", false, fmt.Errorf("Get: reading bytes of gs://%s/%s: %w", s.bucket, s.object(key), err)
	}
	return string(data), true, nil
}

// Set implements the blob.Store interface.
func (s *Store) Set(ctx context.Context, key, value string) error {
	w := s.client.Bucket(s.bucket).Object(s.object(key)).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write([]byte(value)); err != nil {
		_ = w.Close()
		return fmt.Errorf("Set: writing gs://%s/%s: %w", s.bucket, s.object(key), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Set: finalizing gs://%s/%s: %w", s.bucket, s.object(key), err)
	}
	return nil
}

// Remove implements the blob.Store interface.
func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(s.object(key)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("Remove: deleting gs://%s/%s: %w", s.bucket, s.object(key), err)
	}
	return nil
}

// Ensure Store implements the blob.Store interface.
var _ blob.Store = (*Store)(nil)
