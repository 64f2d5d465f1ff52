package store

import (
	"context"
	"sync"

	"clearance/internal/override/models"
	"clearance/pkg/platform/sentinel"
)

// InMemoryStore keeps the override log in process memory.
type InMemoryStore struct {
	mu          sync.RWMutex
	nextID      int64
	byContainer map[string][]models.Record
}

// NewInMemoryStore creates an empty override log.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byContainer: make(map[string][]models.Record)}
}

// Append assigns the next identifier and stores the record.
func (s *InMemoryStore) Append(_ context.Context, record *models.Record) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	saved := *record
	saved.ID = s.nextID
	s.byContainer[saved.ContainerID] = append(s.byContainer[saved.ContainerID], saved)
	return &saved, nil
}

// ListByContainer returns the shipment's overrides, oldest first.
func (s *InMemoryStore) ListByContainer(_ context.Context, containerID string) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.byContainer[containerID]
	out := make([]models.Record, len(records))
	copy(out, records)
	return out, nil
}

// Latest returns the most recent override or sentinel.ErrNotFound.
func (s *InMemoryStore) Latest(_ context.Context, containerID string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.byContainer[containerID]
	if len(records) == 0 {
		return nil, sentinel.ErrNotFound
	}
	latest := records[len(records)-1]
	return &latest, nil
}
