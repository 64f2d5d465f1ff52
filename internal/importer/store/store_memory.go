package store

import (
	"context"
	"sync"

	"clearance/internal/importer/models"
	"clearance/pkg/platform/sentinel"
)

// InMemoryStore is the local tier: process-owned importer profiles. It is the
// only tier whose write success is required.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile
}

// NewInMemoryStore creates an empty local tier.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[string]*models.Profile)}
}

// FindByID returns a copy of the stored profile or sentinel.ErrNotFound.
func (s *InMemoryStore) FindByID(_ context.Context, importerID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[importerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

// Create stores a new profile. Returns sentinel.ErrConflict when the key is taken.
func (s *InMemoryStore) Create(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.ImporterID]; ok {
		return sentinel.ErrConflict
	}
	s.profiles[profile.ImporterID] = profile.Clone()
	return nil
}

// Update applies fn to a copy of the stored profile and saves the result only
// if fn succeeds.
func (s *InMemoryStore) Update(_ context.Context, importerID string, fn func(*models.Profile) error) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.profiles[importerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.profiles[importerID] = next
	return next.Clone(), nil
}

// Reset drops every profile.
func (s *InMemoryStore) Reset(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = make(map[string]*models.Profile)
}

// Len reports how many profiles are held.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}
