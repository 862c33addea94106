package task

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownTaskType is returned when no factory is registered for a type.
var ErrUnknownTaskType = errors.New("unknown task type")

// Factory builds an executable task from its ID and JSON payload.
type Factory func(id uuid.UUID, payload []byte) (Task, error)

// Registry maps task types to factories. It is used both for new task
// requests and for tasks recovered from the database.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register sets the factory for a task type, replacing any previous one.
func (r *Registry) Register(taskType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[taskType] = f
}

// Build creates a task of the given type.
func (r *Registry) Build(taskType string, id uuid.UUID, payload []byte) (Task, error) {
	r.mu.RLock()
	f, ok := r.factories[taskType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaskType, taskType)
	}
	t, err := f(id, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s task: %w", taskType, err)
	}
	return t, nil
}

// FromRecord rebuilds a stored task.
func (r *Registry) FromRecord(rec *Record) (Task, error) {
	return r.Build(rec.Type, rec.ID, rec.Payload)
}

// Types lists the registered task types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
