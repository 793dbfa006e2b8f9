package kv

import "context"

// Store defines the interface for a key-value store.
// Implementations of this interface can be swapped out,
// allowing for different storage backends (e.g., in-memory, bolt, Raft-replicated, remote).
// Backends that perform I/O must bound every call and report a timeout as a *StoreError.
type Store[V any] interface {
	// Get retrieves the value associated with the given key.
	// Returns the value and true if the key exists, or the zero value and false if not.
	// A missing key is not an error.
	Get(ctx context.Context, key string) (V, bool, error)

	// Put stores a key-value pair, overwriting any previous value.
	// Returns an error if the operation fails.
	Put(ctx context.Context, key string, value V) error

	// Delete removes a key from the store. Deleting a missing key succeeds.
	// Returns an error if the operation fails.
	Delete(ctx context.Context, key string) error
}
