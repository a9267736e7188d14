package warehouse

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/citybike/warehouse/internal/domain"
)

// MemoryStore keeps materializations in process memory. It is the default
// store when no DATABASE_URL is configured and the fixture store for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*domain.Table
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*domain.Table)}
}

// Write replaces the model's materialization. The table is stored by
// reference; tables are immutable after materialization by convention, so no
// defensive copy is taken.
func (s *MemoryStore) Write(_ context.Context, t *domain.Table) error {
	if t.Name == "" {
		return fmt.Errorf("warehouse.MemoryStore.Write: table has no name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.Name] = t
	return nil
}

// Read returns the model's latest materialization.
func (s *MemoryStore) Read(_ context.Context, model string) (*domain.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[model]
	if !ok {
		return nil, fmt.Errorf("warehouse.MemoryStore.Read: %s: %w", model, domain.ErrNotMaterialized)
	}
	return t, nil
}

// Models returns all materialized model names, sorted.
func (s *MemoryStore) Models(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// compile-time check: MemoryStore must satisfy Store.
var _ Store = (*MemoryStore)(nil)
