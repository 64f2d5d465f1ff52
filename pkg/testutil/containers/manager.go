//go:build integration

// Package containers starts the backing services used by integration tests.
// Each container is started at most once per test binary and shared across
// suites; suites isolate themselves by truncating or flushing state.
package containers

import (
	"sync"
	"testing"
)

// Manager lazily starts and hands out shared containers.
type Manager struct {
	mu       sync.Mutex
	redis    *RedisContainer
	postgres *PostgresContainer
	kafka    *RedpandaContainer
}

var (
	manager     *Manager
	managerOnce sync.Once
)

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{}
	})
	return manager
}

// GetRedis returns the shared Redis container, starting it on first use.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redis == nil {
		m.redis = NewRedisContainer(t)
	}
	return m.redis
}

// GetPostgres returns the shared Postgres container, starting it on first use.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postgres == nil {
		m.postgres = NewPostgresContainer(t)
	}
	return m.postgres
}

// GetKafka returns the shared Redpanda broker, starting it on first use.
func (m *Manager) GetKafka(t *testing.T) *RedpandaContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.kafka == nil {
		m.kafka = NewRedpandaContainer(t)
	}
	return m.kafka
}
