// Package blob defines the flat key-value text store the ledger persists
// into. Implementations live in the subpackages memory, file and gcs.
package blob

import "context"

// Store is a flat namespace of text documents. Get reports absence through
// its second return value rather than an error; errors are reserved for the
// backend actually failing.
type Store interface {
	// Get returns the document stored under key, or ok=false when the key
	// has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set writes the document under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error
}
