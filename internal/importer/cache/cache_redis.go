package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"clearance/internal/importer/models"
	"clearance/pkg/platform/sentinel"
)

const importerKeyPrefix = "importer:"

// RedisCache stores profiles as JSON under importer:<id> with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache constructs a Redis-backed cache tier.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached profile or sentinel.ErrNotFound on miss.
func (c *RedisCache) Get(ctx context.Context, importerID string) (*models.Profile, error) {
	raw, err := c.client.Get(ctx, importerKeyPrefix+importerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var profile models.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode cached profile: %w", err)
	}
	return &profile, nil
}

// Set writes profile with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, profile *models.Profile) error {
	if profile == nil {
		return nil
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := c.client.Set(ctx, importerKeyPrefix+profile.ImporterID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete evicts the entry for importerID. Deleting a missing key is not an error.
func (c *RedisCache) Delete(ctx context.Context, importerID string) error {
	if err := c.client.Del(ctx, importerKeyPrefix+importerID).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
