package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockTaskStore is an in-memory TaskStore for tests.
type MockTaskStore struct {
	mutex   sync.RWMutex
	records map[uuid.UUID]*Record

	SaveFn         func(ctx context.Context, task Task) error
	UpdateStatusFn func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
}

// NewMockTaskStore creates an empty store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{records: make(map[uuid.UUID]*Record)}
}

// Put stores a record directly, as if left behind by an earlier run.
func (s *MockTaskStore) Put(rec *Record) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	cp := *rec
	s.records[rec.ID] = &cp
}

// Get returns a copy of the stored record.
func (s *MockTaskStore) Get(id uuid.UUID) (Record, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// SaveTask stores the task as a pending record.
func (s *MockTaskStore) SaveTask(ctx context.Context, task Task) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, task)
	}
	now := time.Now().UTC()
	s.Put(&Record{
		ID:        task.ID(),
		Type:      task.Type(),
		Payload:   task.Payload(),
		Status:    task.Status(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	return nil
}

// UpdateTaskStatus updates a stored record. Unknown IDs are ignored.
func (s *MockTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, taskID, status, errorMsg)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	rec, ok := s.records[taskID]
	if !ok {
		return nil
	}
	rec.Status = status
	rec.ErrorMessage = errorMsg
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// GetPendingTasks returns pending records.
func (s *MockTaskStore) GetPendingTasks(ctx context.Context) ([]*Record, error) {
	return s.byStatus(TaskStatusPending, 0), nil
}

// GetProcessingTasks returns processing records, optionally only those not
// updated within olderThan.
func (s *MockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]*Record, error) {
	return s.byStatus(TaskStatusProcessing, olderThan), nil
}

func (s *MockTaskStore) byStatus(status TaskStatus, olderThan time.Duration) []*Record {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := time.Now().UTC()
	var out []*Record
	for _, rec := range s.records {
		if rec.Status != status {
			continue
		}
		if olderThan > 0 && now.Sub(rec.UpdatedAt) <= olderThan {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out
}
