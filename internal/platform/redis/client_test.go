package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clearance/internal/platform/config"
)

func TestOpenWithoutURLSelectsNoClient(t *testing.T) {
	client, err := Open(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestOpenRejectsBadURL(t *testing.T) {
	_, err := Open(context.Background(), config.RedisConfig{URL: "://nope"})
	assert.Error(t, err)
}

func TestApplyPoolKeepsDefaultsForZeroValues(t *testing.T) {
	opts, err := redis.ParseURL("redis://localhost:6379/0")
	require.NoError(t, err)
	defaultPool := opts.PoolSize

	applyPool(opts, config.RedisConfig{ReadTimeout: 3 * time.Second})
	assert.Equal(t, defaultPool, opts.PoolSize)
	assert.Equal(t, 3*time.Second, opts.ReadTimeout)
}
