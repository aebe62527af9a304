// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

// Package todo provides the task domain: the record type, its
// persistence contract, and the use cases operating on it.
package todo

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Todo represents one task owned by a user.
type Todo struct {
	ID          int64
	UserID      int64
	Description string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Completed reports whether the task has been completed.
func (t *Todo) Completed() bool {
	return t.CompletedAt != nil
}

// Repository manages task persistence.
//
// Every lookup and mutation is scoped by owner: a record is only
// found or changed when its user id matches. Cross-owner access
// manifests as not-found, never as a distinct authorization error.
type Repository interface {
	// Create stores a new task and returns the persisted record.
	Create(ctx context.Context, userID int64, description string) (*Todo, error)

	// GetByOwner retrieves a task by id and owner.
	// Returns ErrNotFound when no row matches both.
	GetByOwner(ctx context.Context, id, userID int64) (*Todo, error)

	// DeleteByOwner removes the task matching id and owner, returning
	// the number of rows deleted (zero when no row matched).
	DeleteByOwner(ctx context.Context, id, userID int64) (int64, error)

	// SetCompletion updates completed_at on the task matching id and
	// owner, returning the number of rows matched. A row already in the
	// target state still counts as matched.
	SetCompletion(ctx context.Context, id, userID int64, completedAt *time.Time) (int64, error)

	// ListByOwner returns the owner's tasks, completed or uncompleted,
	// ordered by creation.
	ListByOwner(ctx context.Context, userID int64, completed bool) ([]*Todo, error)
}

// UserLookup is the narrow capability Create needs from the user side.
type UserLookup interface {
	// Exists reports whether a user with the given id exists.
	Exists(ctx context.Context, userID int64) (bool, error)
}
