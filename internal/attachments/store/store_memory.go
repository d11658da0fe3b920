package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"ayuda/internal/attachments/models"
	id "ayuda/pkg/domain"
	"ayuda/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu          sync.RWMutex
	attachments map[id.AttachmentID]*models.Attachment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{attachments: make(map[id.AttachmentID]*models.Attachment)}
}

func (s *InMemoryStore) Create(_ context.Context, a *models.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.attachments[a.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := *a
	s.attachments[a.ID] = &stored
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, caseID id.CaseID, attachmentID id.AttachmentID) (*models.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attachments[attachmentID]
	if !ok || a.CaseID != caseID || a.DeletedAt != nil {
		return nil, sentinel.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (s *InMemoryStore) ListByCase(_ context.Context, caseID id.CaseID) ([]*models.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Attachment
	for _, a := range s.attachments {
		if a.CaseID == caseID && a.DeletedAt == nil {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) SoftDelete(_ context.Context, attachmentID id.AttachmentID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attachments[attachmentID]
	if !ok || a.DeletedAt != nil {
		return sentinel.ErrNotFound
	}
	deleted := at
	a.DeletedAt = &deleted
	return nil
}
