package memory

import (
	"context"
	"sync"

	audit "ayuda/pkg/platform/audit"
)

type subjectKey struct {
	subjectType audit.SubjectType
	subjectID   string
}

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[subjectKey][]audit.Event
	all    []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[subjectKey][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[subjectKey][]audit.Event)
	s.all = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := subjectKey{subjectType: event.SubjectType, subjectID: event.SubjectID}
	s.events[key] = append(s.events[key], event)
	s.all = append(s.all, event)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subjectType audit.SubjectType, subjectID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[subjectKey{subjectType: subjectType, subjectID: subjectID}]...), nil
}

// ListAll returns every event in append order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.all...), nil
}

// Actions returns the action names of all events in append order. Test helper.
func (s *InMemoryStore) Actions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	actions := make([]string, 0, len(s.all))
	for _, e := range s.all {
		actions = append(actions, e.Action)
	}
	return actions
}
