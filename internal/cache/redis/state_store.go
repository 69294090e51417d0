package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// StateStore implements domain.StateStore as one Redis hash per namespace.
type StateStore struct {
	client *Client
	key    string
}

// NewStateStore creates a StateStore whose fields live in the hash
// state:<namespace>.
func NewStateStore(c *Client, namespace string) *StateStore {
	if namespace == "" {
		namespace = "default"
	}
	return &StateStore{client: c, key: c.Key("state:" + namespace)}
}

var _ domain.StateStore = (*StateStore)(nil)

// Get returns the value for key or domain.ErrNotFound.
func (s *StateStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Underlying().HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: get state %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key.
func (s *StateStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Underlying().HSet(ctx, s.key, key, value).Err(); err != nil {
		return fmt.Errorf("redis: set state %s: %w", key, err)
	}
	return nil
}
