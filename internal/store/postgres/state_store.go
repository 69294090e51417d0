package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// StateStore implements domain.StateStore on the kv_state table. Keys are
// scoped to a namespace so several users can share one database.
type StateStore struct {
	db        DB
	namespace string
}

// NewStateStore creates a StateStore for namespace.
func NewStateStore(db DB, namespace string) *StateStore {
	if namespace == "" {
		namespace = "default"
	}
	return &StateStore{db: db, namespace: namespace}
}

var _ domain.StateStore = (*StateStore)(nil)

// Get returns the value for key or domain.ErrNotFound.
func (s *StateStore) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM kv_state WHERE namespace = $1 AND key = $2`
	var value string
	if err := s.db.QueryRow(ctx, query, s.namespace, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("postgres: get state %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key.
func (s *StateStore) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO kv_state (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := s.db.Exec(ctx, query, s.namespace, key, value); err != nil {
		return fmt.Errorf("postgres: set state %s: %w", key, err)
	}
	return nil
}
