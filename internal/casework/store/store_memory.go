package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"ayuda/internal/casework/models"
	id "ayuda/pkg/domain"
	"ayuda/pkg/platform/sentinel"
)

// InMemoryStore keeps cases in maps and hands out deep copies, so callers
// never alias stored state. CreateCase enforces
// the one-active-case rule under the store lock, standing in for the partial
// unique index.
type InMemoryStore struct {
	mu      sync.RWMutex
	cases   map[id.CaseID]*models.SocialCase
	items   map[id.CaseItemID]id.CaseID
	numbers map[string]id.CaseID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		cases:   make(map[id.CaseID]*models.SocialCase),
		items:   make(map[id.CaseItemID]id.CaseID),
		numbers: make(map[string]id.CaseID),
	}
}

func (s *InMemoryStore) CreateCase(_ context.Context, c *models.SocialCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.numbers[c.CaseNumber]; taken {
		return ErrCaseNumberTaken
	}
	if c.Status.IsActive() {
		if s.activeLocked(c.BeneficiaryID, c.CategoryID) != nil {
			return ErrActiveCaseExists
		}
	}
	if _, exists := s.cases[c.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := cloneCase(c)
	s.cases[c.ID] = stored
	s.numbers[c.CaseNumber] = c.ID
	for _, item := range stored.Items {
		s.items[item.ID] = c.ID
	}
	return nil
}

func (s *InMemoryStore) FindCase(_ context.Context, caseID id.CaseID) (*models.SocialCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[caseID]
	if !ok || c.DeletedAt != nil {
		return nil, sentinel.ErrNotFound
	}
	return cloneCase(c), nil
}

// FindCaseForUpdate is FindCase; the caller's shard lock plays the row lock.
func (s *InMemoryStore) FindCaseForUpdate(ctx context.Context, caseID id.CaseID) (*models.SocialCase, error) {
	return s.FindCase(ctx, caseID)
}

func (s *InMemoryStore) FindCaseIDByItem(_ context.Context, itemID id.CaseItemID) (id.CaseID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	caseID, ok := s.items[itemID]
	if !ok {
		return id.CaseID{}, sentinel.ErrNotFound
	}
	if c := s.cases[caseID]; c == nil || c.DeletedAt != nil {
		return id.CaseID{}, sentinel.ErrNotFound
	}
	return caseID, nil
}

func (s *InMemoryStore) FindActiveCase(_ context.Context, beneficiaryID id.CitizenID, categoryID id.CategoryID) (*models.SocialCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.activeLocked(beneficiaryID, categoryID)
	if c == nil {
		return nil, sentinel.ErrNotFound
	}
	return cloneCase(c), nil
}

func (s *InMemoryStore) activeLocked(beneficiaryID id.CitizenID, categoryID id.CategoryID) *models.SocialCase {
	for _, c := range s.cases {
		if c.DeletedAt == nil && c.Status.IsActive() && c.BeneficiaryID == beneficiaryID && c.CategoryID == categoryID {
			return c
		}
	}
	return nil
}

func (s *InMemoryStore) UpdateCase(_ context.Context, c *models.SocialCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.cases[c.ID]
	if !ok || stored.DeletedAt != nil {
		return sentinel.ErrNotFound
	}
	if c.Status.IsActive() && !stored.Status.IsActive() {
		if other := s.activeLocked(c.BeneficiaryID, c.CategoryID); other != nil && other.ID != c.ID {
			return ErrActiveCaseExists
		}
	}
	stored.Status = c.Status
	stored.AssignedTo = cloneUser(c.AssignedTo)
	stored.RejectionReason = c.RejectionReason
	stored.UpdatedAt = c.UpdatedAt
	return nil
}

func (s *InMemoryStore) UpdateItems(_ context.Context, items []*models.CaseItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if err := item.CheckQuantities(); err != nil {
			return sentinel.ErrInvalidState
		}
		if _, ok := s.items[item.ID]; !ok {
			return sentinel.ErrNotFound
		}
	}
	for _, item := range items {
		c := s.cases[s.items[item.ID]]
		for i, stored := range c.Items {
			if stored.ID == item.ID {
				c.Items[i] = cloneItem(item)
			}
		}
	}
	return nil
}

func (s *InMemoryStore) ListCases(_ context.Context, filter models.ListFilter) ([]*models.SocialCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.SocialCase
	for _, c := range s.cases {
		if c.DeletedAt != nil {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.AssignedTo != nil && !c.IsAssignedTo(*filter.AssignedTo) {
			continue
		}
		if filter.BeneficiaryID != nil && c.BeneficiaryID != *filter.BeneficiaryID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CaseNumber > out[j].CaseNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	result := make([]*models.SocialCase, 0, len(out))
	for _, c := range out {
		result = append(result, cloneCase(c))
	}
	return result, nil
}

func (s *InMemoryStore) SoftDeleteCase(_ context.Context, caseID id.CaseID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[caseID]
	if !ok || c.DeletedAt != nil {
		return sentinel.ErrNotFound
	}
	deleted := at
	c.DeletedAt = &deleted
	c.UpdatedAt = at
	return nil
}

func cloneCase(c *models.SocialCase) *models.SocialCase {
	out := *c
	out.AssignedTo = cloneUser(c.AssignedTo)
	if c.SubcategoryID != nil {
		sub := *c.SubcategoryID
		out.SubcategoryID = &sub
	}
	if c.DeletedAt != nil {
		at := *c.DeletedAt
		out.DeletedAt = &at
	}
	out.Items = make([]*models.CaseItem, 0, len(c.Items))
	for _, item := range c.Items {
		out.Items = append(out.Items, cloneItem(item))
	}
	return &out
}

func cloneItem(i *models.CaseItem) *models.CaseItem {
	out := *i
	out.AssignedTo = cloneUser(i.AssignedTo)
	out.ReviewedBy = cloneUser(i.ReviewedBy)
	out.FulfilledBy = cloneUser(i.FulfilledBy)
	if i.ApprovedQuantity != nil {
		qty := *i.ApprovedQuantity
		out.ApprovedQuantity = &qty
	}
	if i.FulfilledAt != nil {
		at := *i.FulfilledAt
		out.FulfilledAt = &at
	}
	return &out
}

func cloneUser(u *id.UserID) *id.UserID {
	if u == nil {
		return nil
	}
	v := *u
	return &v
}
