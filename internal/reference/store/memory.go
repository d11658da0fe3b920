package store

import (
	"context"
	"sync"

	"ayuda/internal/reference/models"
	id "ayuda/pkg/domain"
	"ayuda/pkg/platform/sentinel"
)

// InMemoryStore backs tests and local runs without a database.
type InMemoryStore struct {
	mu         sync.RWMutex
	citizens   map[id.CitizenID]models.Citizen
	categories map[id.CategoryID]models.Category
	services   map[id.MedicalServiceID]models.MedicalService
	users      map[id.UserID]models.User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		citizens:   make(map[id.CitizenID]models.Citizen),
		categories: make(map[id.CategoryID]models.Category),
		services:   make(map[id.MedicalServiceID]models.MedicalService),
		users:      make(map[id.UserID]models.User),
	}
}

func (s *InMemoryStore) PutCitizen(c models.Citizen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.citizens[c.ID] = c
}

func (s *InMemoryStore) PutCategory(c models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

func (s *InMemoryStore) PutMedicalService(m models.MedicalService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.SubSpecialties = append([]string(nil), m.SubSpecialties...)
	s.services[m.ID] = m
}

func (s *InMemoryStore) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Capabilities = append([]models.Capability(nil), u.Capabilities...)
	s.users[u.ID] = u
}

func (s *InMemoryStore) FindCitizen(_ context.Context, citizenID id.CitizenID) (*models.Citizen, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.citizens[citizenID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (s *InMemoryStore) FindCategory(_ context.Context, categoryID id.CategoryID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[categoryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (s *InMemoryStore) FindMedicalService(_ context.Context, serviceID id.MedicalServiceID) (*models.MedicalService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.services[serviceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	m.SubSpecialties = append([]string(nil), m.SubSpecialties...)
	return &m, nil
}

func (s *InMemoryStore) FindUser(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	u.Capabilities = append([]models.Capability(nil), u.Capabilities...)
	return &u, nil
}
