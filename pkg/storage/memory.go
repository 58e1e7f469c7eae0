package storage

import "sync"

type memoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an in-memory Storage. Used in tests and as a
// non-persistent fallback.
func NewMemory() Storage {
	return &memoryStorage{
		values: make(map[string]string),
	}
}

func (s *memoryStorage) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.values[key]
	if !exists {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *memoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *memoryStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
