package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/store"
)

// MockStatusCache is an in-memory store.StatusCache. Expiry is not simulated;
// the TTL of the last Put is recorded instead.
type MockStatusCache struct {
	PutFn func(ctx context.Context, rec *domain.StatusRecord, ttl time.Duration) error
	GetFn func(ctx context.Context, taskID string) (*domain.StatusRecord, error)

	mu        sync.Mutex
	snapshots map[string]*domain.StatusRecord
	ttls      map[string]time.Duration
	puts      int
}

// NewMockStatusCache creates an empty MockStatusCache.
func NewMockStatusCache() *MockStatusCache {
	return &MockStatusCache{
		snapshots: make(map[string]*domain.StatusRecord),
		ttls:      make(map[string]time.Duration),
	}
}

// Put implements store.StatusCache
func (m *MockStatusCache) Put(ctx context.Context, rec *domain.StatusRecord, ttl time.Duration) error {
	m.mu.Lock()
	m.puts++
	m.mu.Unlock()

	if m.PutFn != nil {
		if err := m.PutFn(ctx, rec, ttl); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[rec.TaskID] = rec.Clone()
	m.ttls[rec.TaskID] = ttl
	return nil
}

// Get implements store.StatusCache
func (m *MockStatusCache) Get(ctx context.Context, taskID string) (*domain.StatusRecord, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.snapshots[taskID]
	if !ok {
		return nil, store.ErrCacheMiss
	}
	return rec.Clone(), nil
}

// Seed stores a snapshot directly, bypassing PutFn.
func (m *MockStatusCache) Seed(rec *domain.StatusRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[rec.TaskID] = rec.Clone()
}

// TTL returns the TTL passed with the last successful Put for taskID.
func (m *MockStatusCache) TTL(taskID string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[taskID]
}

// Puts returns how many times Put was called, including failed writes.
func (m *MockStatusCache) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
