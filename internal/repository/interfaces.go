package repository

import "context"

// StateStore is the durable key-value contract every persisted state slice
// goes through. Implementations must survive process restarts; values are
// opaque bytes (JSON documents in practice).
type StateStore interface {
	// Get returns the stored value for key. The second result is false when
	// the key has never been written.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Clear removes every key. Used by the full learning-data reset.
	Clear(ctx context.Context) error
}
