package store

import (
	"context"

	"pontual-runner/internal/domain"
)

// Store is the device-local session state: which route is assigned and which
// of its points are done. All writes are durable before the call returns.
// Membership in the completion set is only meaningful relative to the current
// assignment, so Finish clears both together.
type Store interface {
	// Assign records the local assignment, overwriting any prior one.
	Assign(ctx context.Context, routeID int64, routeName string) error
	// Assignment returns the current assignment, or nil when none exists.
	Assignment(ctx context.Context) (*domain.Assignment, error)
	// CompletePoint marks a point done. Idempotent for membership; a
	// non-empty photoRef overwrites any stored reference.
	CompletePoint(ctx context.Context, pointID int64, photoRef string) error
	// IsCompleted reports whether the point is marked done.
	IsCompleted(ctx context.Context, pointID int64) (bool, error)
	// CompletedCount returns the number of points marked done.
	CompletedCount(ctx context.Context) (int, error)
	// AllCompleted reports whether at least total points are marked done.
	AllCompleted(ctx context.Context, total int) (bool, error)
	// Photo returns the stored photo reference for a point, or "" when none.
	Photo(ctx context.Context, pointID int64) (string, error)
	// Finish clears the assignment, the completion set and the photo
	// references atomically.
	Finish(ctx context.Context) error
}
