// Package memory implements the ephemeral key/value store: values live only
// as long as the client process, the equivalent of a browser tab's session storage.
package memory

import (
	"context"
	"sync"

	"github.com/iudanet/fantasy11/internal/client/storage"
)

// Storage is a goroutine-safe in-memory storage.KV.
type Storage struct {
	values map[string]string
	mu     sync.RWMutex
}

var _ storage.KV = (*Storage)(nil)

// New creates an empty store.
func New() *Storage {
	return &Storage{values: make(map[string]string)}
}

func (s *Storage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}
