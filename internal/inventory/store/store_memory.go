package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"ayuda/internal/inventory/models"
	id "ayuda/pkg/domain"
	"ayuda/pkg/platform/sentinel"
)

// InMemoryStore keeps supplies and their movement ledger in maps. Callers
// serialize per supply through the service's RunInTx.
type InMemoryStore struct {
	mu        sync.RWMutex
	supplies  map[id.SupplyID]models.Supply
	movements map[id.SupplyID][]models.Movement
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		supplies:  make(map[id.SupplyID]models.Supply),
		movements: make(map[id.SupplyID][]models.Movement),
	}
}

func (s *InMemoryStore) CreateSupply(_ context.Context, supply *models.Supply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.supplies[supply.ID]; exists {
		return sentinel.ErrConflict
	}
	s.supplies[supply.ID] = *supply
	return nil
}

func (s *InMemoryStore) FindSupply(_ context.Context, supplyID id.SupplyID) (*models.Supply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	supply, ok := s.supplies[supplyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &supply, nil
}

// FindSupplyForUpdate is FindSupply; the per-supply shard lock held by the
// caller plays the role of the row lock.
func (s *InMemoryStore) FindSupplyForUpdate(ctx context.Context, supplyID id.SupplyID) (*models.Supply, error) {
	return s.FindSupply(ctx, supplyID)
}

func (s *InMemoryStore) UpdateStock(_ context.Context, supplyID id.SupplyID, stock int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	supply, ok := s.supplies[supplyID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stock < 0 {
		return sentinel.ErrInvalidState
	}
	supply.CurrentStock = stock
	supply.UpdatedAt = at
	s.supplies[supplyID] = supply
	return nil
}

func (s *InMemoryStore) AppendMovement(_ context.Context, m *models.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.supplies[m.SupplyID]; !ok {
		return sentinel.ErrNotFound
	}
	s.movements[m.SupplyID] = append(s.movements[m.SupplyID], *m)
	return nil
}

func (s *InMemoryStore) ListMovements(_ context.Context, supplyID id.SupplyID) ([]*models.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.supplies[supplyID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	stored := s.movements[supplyID]
	out := make([]*models.Movement, len(stored))
	for i := range stored {
		m := stored[i]
		out[i] = &m
	}
	return out, nil
}

func (s *InMemoryStore) ListLowStock(_ context.Context) ([]*models.Supply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Supply
	for _, supply := range s.supplies {
		if supply.IsLow() {
			sup := supply
			out = append(out, &sup)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentStock != out[j].CurrentStock {
			return out[i].CurrentStock < out[j].CurrentStock
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// SetStockUnsafe overwrites the cached counter without a movement. Tests use
// it to simulate drift.
func (s *InMemoryStore) SetStockUnsafe(supplyID id.SupplyID, stock int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	supply := s.supplies[supplyID]
	supply.CurrentStock = stock
	s.supplies[supplyID] = supply
}
