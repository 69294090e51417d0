// Package memory provides process-local stores used when no external backend
// is configured.
package memory

import (
	"context"
	"sync"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// StateStore implements domain.StateStore in memory.
type StateStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewStateStore creates an empty StateStore.
func NewStateStore() *StateStore {
	return &StateStore{data: make(map[string]string)}
}

var _ domain.StateStore = (*StateStore)(nil)

// Get returns the value for key or domain.ErrNotFound.
func (s *StateStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (s *StateStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}
