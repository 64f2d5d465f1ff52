package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clearance/internal/importer/models"
	"clearance/pkg/platform/sentinel"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewInMemoryCache(6*time.Hour, WithClock(clock))

	profile := models.NewProfile(models.Registration{ImporterID: "IMP-1", YearsActive: 1}, now)
	require.NoError(t, c.Set(ctx, profile))

	t.Run("hit within ttl", func(t *testing.T) {
		got, err := c.Get(ctx, "IMP-1")
		require.NoError(t, err)
		assert.Equal(t, profile.TrustScore, got.TrustScore)
	})

	t.Run("miss after ttl", func(t *testing.T) {
		now = now.Add(6 * time.Hour)
		_, err := c.Get(ctx, "IMP-1")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("delete evicts", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, profile))
		require.NoError(t, c.Delete(ctx, "IMP-1"))
		_, err := c.Get(ctx, "IMP-1")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
