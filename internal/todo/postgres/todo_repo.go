// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

// Package postgres implements the todo persistence contracts using
// PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/donelist/donelist/internal/store"
	"github.com/donelist/donelist/internal/todo"
)

// TodoRepository implements todo.Repository using PostgreSQL.
type TodoRepository struct {
	db store.Querier
}

// NewTodoRepository creates a new TodoRepository.
func NewTodoRepository(db store.Querier) *TodoRepository {
	return &TodoRepository{db: db}
}

// Create stores a new task and returns the persisted record.
func (r *TodoRepository) Create(ctx context.Context, userID int64, description string) (*todo.Todo, error) {
	now := time.Now()
	row := r.db.QueryRow(ctx, `
		INSERT INTO todos (user_id, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, description, completed_at, created_at, updated_at
	`, userID, description, now, now)

	created, err := scanTodo(row)
	if err != nil {
		return nil, oops.Code("TODO_INSERT_FAILED").
			With("user_id", userID).
			Wrap(err)
	}
	return created, nil
}

// GetByOwner retrieves a task by id and owner.
func (r *TodoRepository) GetByOwner(ctx context.Context, id, userID int64) (*todo.Todo, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, description, completed_at, created_at, updated_at
		FROM todos
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	found, err := scanTodo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TODO_NOT_FOUND").
			With("id", id).
			Wrap(todo.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TODO_GET_FAILED").
			With("id", id).
			Wrap(err)
	}
	return found, nil
}

// DeleteByOwner removes the task matching id and owner.
func (r *TodoRepository) DeleteByOwner(ctx context.Context, id, userID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM todos WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return 0, oops.Code("TODO_DELETE_FAILED").
			With("id", id).
			Wrap(err)
	}
	return tag.RowsAffected(), nil
}

// SetCompletion updates completed_at on the task matching id and owner.
// The single-statement conditional update keeps concurrent requests
// safe: zero rows means no record is owned by that user under that id.
func (r *TodoRepository) SetCompletion(ctx context.Context, id, userID int64, completedAt *time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE todos
		SET completed_at = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2
	`, id, userID, completedAt, time.Now())
	if err != nil {
		return 0, oops.Code("TODO_UPDATE_FAILED").
			With("id", id).
			Wrap(err)
	}
	return tag.RowsAffected(), nil
}

// ListByOwner returns the owner's tasks, completed or uncompleted,
// ordered by creation.
func (r *TodoRepository) ListByOwner(ctx context.Context, userID int64, completed bool) ([]*todo.Todo, error) {
	condition := "completed_at IS NULL"
	if completed {
		condition = "completed_at IS NOT NULL"
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, description, completed_at, created_at, updated_at
		FROM todos
		WHERE user_id = $1 AND `+condition+`
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, oops.Code("TODO_LIST_FAILED").
			With("user_id", userID).
			Wrap(err)
	}
	defer rows.Close()

	var todos []*todo.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, oops.Code("TODO_LIST_FAILED").
				With("operation", "scan row").
				Wrap(err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TODO_LIST_FAILED").
			With("operation", "iterate rows").
			Wrap(err)
	}
	return todos, nil
}

func scanTodo(row pgx.Row) (*todo.Todo, error) {
	var t todo.Todo
	err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context
	}
	return &t, nil
}
