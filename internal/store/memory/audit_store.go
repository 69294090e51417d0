package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// AuditStore implements domain.AuditStore as a bounded in-memory log. The
// oldest entries are evicted once capacity is reached.
type AuditStore struct {
	mu       sync.RWMutex
	entries  []domain.AuditEntry // oldest first
	nextID   int64
	capacity int
	now      func() time.Time
}

// NewAuditStore creates an AuditStore holding at most capacity entries.
func NewAuditStore(capacity int) *AuditStore {
	if capacity <= 0 {
		capacity = 10_000
	}
	return &AuditStore{capacity: capacity, now: time.Now}
}

var _ domain.AuditStore = (*AuditStore)(nil)

// Log appends an entry.
func (s *AuditStore) Log(_ context.Context, event string, detail map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.entries = append(s.entries, domain.AuditEntry{
		ID:        s.nextID,
		Event:     event,
		Detail:    maps.Clone(detail),
		CreatedAt: s.now().UTC(),
	})
	if over := len(s.entries) - s.capacity; over > 0 {
		s.entries = append([]domain.AuditEntry(nil), s.entries[over:]...)
	}
	return nil
}

// List returns entries newest first, filtered and paginated by opts.
func (s *AuditStore) List(_ context.Context, opts domain.ListOpts) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.AuditEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if opts.Since != nil && e.CreatedAt.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && e.CreatedAt.After(*opts.Until) {
			continue
		}
		out = append(out, e)
	}
	return paginate(out, opts), nil
}

func paginate[T any](items []T, opts domain.ListOpts) []T {
	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return nil
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}
