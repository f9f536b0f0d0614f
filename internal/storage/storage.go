// Package storage provides the durable key-value store the session layer
// persists its state into. The interface is deliberately tiny so tests can
// swap in a memory-backed store.
package storage

// Store is a string key-value store with durable semantics left to the
// implementation.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set writes value under key, replacing any prior value.
	Set(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}
