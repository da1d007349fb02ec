package queue

import (
	"context"
	"sync"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// MemoryStore is an in-memory implementation of the QueueStore interface.
// Items do not survive a restart; it exists for tests and single-shot runs.
type MemoryStore struct {
	items []core.QueueItem
	mu    sync.Mutex
}

// NewMemoryStore creates a new in-memory queue store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored items in enqueue order
func (s *MemoryStore) Load(ctx context.Context) ([]core.QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]core.QueueItem, len(s.items))
	copy(items, s.items)
	return items, nil
}

// Save replaces the stored items
func (s *MemoryStore) Save(ctx context.Context, items []core.QueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]core.QueueItem, len(items))
	copy(s.items, items)
	return nil
}
