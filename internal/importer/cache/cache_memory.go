package cache

import (
	"context"
	"sync"
	"time"

	"clearance/internal/importer/models"
	"clearance/pkg/platform/sentinel"
)

type cachedProfile struct {
	profile  *models.Profile
	storedAt time.Time
}

// InMemoryCache is the cache tier used when no Redis URL is configured.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cachedProfile
	ttl     time.Duration
	now     func() time.Time
}

// InMemoryOption configures an InMemoryCache.
type InMemoryOption func(*InMemoryCache)

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) InMemoryOption {
	return func(c *InMemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewInMemoryCache creates a cache whose entries expire after ttl.
func NewInMemoryCache(ttl time.Duration, opts ...InMemoryOption) *InMemoryCache {
	c := &InMemoryCache{
		entries: make(map[string]cachedProfile),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached profile or sentinel.ErrNotFound on miss or expiry.
func (c *InMemoryCache) Get(_ context.Context, importerID string) (*models.Profile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.entries[importerID]; ok && c.now().Sub(entry.storedAt) < c.ttl {
		return entry.profile.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

// Set stores profile under its importer ID.
func (c *InMemoryCache) Set(_ context.Context, profile *models.Profile) error {
	if profile == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[profile.ImporterID] = cachedProfile{profile: profile.Clone(), storedAt: c.now()}
	return nil
}

// Delete evicts the entry for importerID.
func (c *InMemoryCache) Delete(_ context.Context, importerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, importerID)
	return nil
}
