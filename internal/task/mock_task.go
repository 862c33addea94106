package task

import (
	"context"

	"github.com/google/uuid"
)

// MockTaskType is the task type produced by MockFactory.
const MockTaskType = "mock"

// MockTask is a Task whose behaviour is set by ExecuteFn.
type MockTask struct {
	TaskID      uuid.UUID
	TaskType    string
	TaskPayload []byte
	TaskStatus  TaskStatus
	ExecuteFn   func(ctx context.Context) error
}

// NewMockTask creates a pending mock task that succeeds.
func NewMockTask(payload string) *MockTask {
	return &MockTask{
		TaskID:      uuid.New(),
		TaskType:    MockTaskType,
		TaskPayload: []byte(payload),
		TaskStatus:  TaskStatusPending,
		ExecuteFn:   func(ctx context.Context) error { return nil },
	}
}

func (t *MockTask) ID() uuid.UUID      { return t.TaskID }
func (t *MockTask) Type() string       { return t.TaskType }
func (t *MockTask) Payload() []byte    { return t.TaskPayload }
func (t *MockTask) Status() TaskStatus { return t.TaskStatus }

// Execute calls ExecuteFn.
func (t *MockTask) Execute(ctx context.Context) error {
	if t.ExecuteFn == nil {
		return nil
	}
	return t.ExecuteFn(ctx)
}

// MockFactory returns a factory building mock tasks that run execute.
func MockFactory(execute func(ctx context.Context, payload []byte) error) Factory {
	return func(id uuid.UUID, payload []byte) (Task, error) {
		t := &MockTask{TaskID: id, TaskType: MockTaskType, TaskPayload: payload, TaskStatus: TaskStatusPending}
		t.ExecuteFn = func(ctx context.Context) error { return execute(ctx, payload) }
		return t, nil
	}
}
