package mocks

import (
	"context"
	"sync"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/store"
)

// MockRecordStore is an in-memory store.TaskRecordStore that keeps every
// write it receives so tests can inspect the full status history of a task.
type MockRecordStore struct {
	// UpsertStatusFn, when set, decides the outcome of a write. A write is
	// only applied to the in-memory state when it returns nil.
	UpsertStatusFn func(ctx context.Context, rec *domain.StatusRecord) error

	// GetStatusFn allows test cases to mock the GetStatus behavior
	GetStatusFn func(ctx context.Context, taskID string) (*domain.StatusRecord, error)

	mu      sync.Mutex
	records map[string]*domain.StatusRecord
	history map[string][]domain.StatusRecord
	calls   int
}

// NewMockRecordStore creates an empty MockRecordStore.
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{
		records: make(map[string]*domain.StatusRecord),
		history: make(map[string][]domain.StatusRecord),
	}
}

// UpsertStatus implements store.TaskRecordStore
func (m *MockRecordStore) UpsertStatus(ctx context.Context, rec *domain.StatusRecord) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.UpsertStatusFn != nil {
		if err := m.UpsertStatusFn(ctx, rec); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.TaskID] = rec.Clone()
	m.history[rec.TaskID] = append(m.history[rec.TaskID], *rec.Clone())
	return nil
}

// GetStatus implements store.TaskRecordStore
func (m *MockRecordStore) GetStatus(ctx context.Context, taskID string) (*domain.StatusRecord, error) {
	if m.GetStatusFn != nil {
		return m.GetStatusFn(ctx, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[taskID]
	if !ok {
		return nil, store.ErrTaskRecordNotFound
	}
	return rec.Clone(), nil
}

// Put seeds a record directly, bypassing UpsertStatusFn and history.
func (m *MockRecordStore) Put(rec *domain.StatusRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.TaskID] = rec.Clone()
}

// History returns every applied write for taskID in order.
func (m *MockRecordStore) History(taskID string) []domain.StatusRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.StatusRecord(nil), m.history[taskID]...)
}

// Status returns the latest applied status for taskID, or "" if none.
func (m *MockRecordStore) Status(taskID string) domain.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[taskID]; ok {
		return rec.Status
	}
	return ""
}

// Calls returns how many times UpsertStatus was called, including rejected writes.
func (m *MockRecordStore) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
