package store

import (
	"context"
	"sync"

	"pontual-runner/internal/domain"
)

// Memory is an in-memory Store for tests and ephemeral runs. Safe for
// concurrent use.
type Memory struct {
	mu         sync.Mutex
	assignment *domain.Assignment
	completed  map[int64]struct{}
	photos     map[int64]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		completed: make(map[int64]struct{}),
		photos:    make(map[int64]string),
	}
}

// Assign records the local assignment, overwriting any prior one.
func (m *Memory) Assign(_ context.Context, routeID int64, routeName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignment = &domain.Assignment{RouteID: routeID, RouteName: routeName}
	return nil
}

// Assignment returns the current assignment, or nil when none exists.
func (m *Memory) Assignment(context.Context) (*domain.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.assignment == nil {
		return nil, nil
	}
	a := *m.assignment
	return &a, nil
}

// CompletePoint marks a point done. Idempotent for membership; a non-empty
// photoRef overwrites the stored reference.
func (m *Memory) CompletePoint(_ context.Context, pointID int64, photoRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed[pointID] = struct{}{}
	if photoRef != "" {
		m.photos[pointID] = photoRef
	}
	return nil
}

// IsCompleted reports whether the point is marked done.
func (m *Memory) IsCompleted(_ context.Context, pointID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.completed[pointID]
	return ok, nil
}

// CompletedCount returns the number of points marked done.
func (m *Memory) CompletedCount(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.completed), nil
}

// AllCompleted reports whether at least total points are marked done.
func (m *Memory) AllCompleted(_ context.Context, total int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.completed) >= total, nil
}

// Photo returns the stored photo reference for a point, or "" when none.
func (m *Memory) Photo(_ context.Context, pointID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.photos[pointID], nil
}

// Finish clears the assignment, the completion set and the photos together.
func (m *Memory) Finish(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignment = nil
	m.completed = make(map[int64]struct{})
	m.photos = make(map[int64]string)
	return nil
}

var _ Store = (*Memory)(nil)
