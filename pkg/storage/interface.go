package storage

// Storage is a durable key-value store for small secrets such as the
// session credential. Implementations are safe for concurrent use.
type Storage interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error

	// Remove deletes the value stored under key. Removing a missing key
	// is not an error.
	Remove(key string) error
}
