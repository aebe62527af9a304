// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package todo

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/donelist/donelist/internal/outcome"
	"github.com/donelist/donelist/internal/usecase"
)

// Outcome tags produced by task use cases. Tags are public contract:
// every caller must consume the full failure taxonomy of the use case it
// invokes.
const (
	TagTodoCreated     outcome.Tag = "todo_created"
	TagTodoDeleted     outcome.Tag = "todo_deleted"
	TagTodoCompleted   outcome.Tag = "todo_completed"
	TagTodoUncompleted outcome.Tag = "todo_uncompleted"
	TagTodoFound       outcome.Tag = "todo_found"
	TagTodoNotFound    outcome.Tag = "todo_not_found"
	TagUserNotFound    outcome.Tag = "user_not_found"
	TagInvalidScope    outcome.Tag = "invalid_scope"
)

// ownerAttrs declares the id + user_id pair shared by every owner-scoped
// use case.
func ownerAttrs() []usecase.Attr {
	return []usecase.Attr{
		{Name: "id", Coerce: usecase.Int, Validators: []usecase.Validator{usecase.Integer()}},
		{Name: "user_id", Coerce: usecase.Int, Validators: []usecase.Validator{usecase.Integer()}},
	}
}

// Create adds a task for an existing user.
//
// Failure taxonomy: invalid_attributes, user_not_found.
type Create struct {
	Todos Repository
	Users UserLookup
}

// Name implements usecase.UseCase.
func (Create) Name() string { return "todo.create" }

// Attrs implements usecase.UseCase.
func (Create) Attrs() []usecase.Attr {
	return []usecase.Attr{
		{Name: "user_id", Coerce: usecase.Int, Validators: []usecase.Validator{usecase.Integer()}},
		{Name: "description", Coerce: usecase.String, Validators: []usecase.Validator{usecase.Presence()}},
	}
}

// Execute implements usecase.UseCase.
func (uc Create) Execute(ctx context.Context, in usecase.Values) (outcome.Outcome, error) {
	userID, _ := in.Int64("user_id")

	exists, err := uc.Users.Exists(ctx, userID)
	if err != nil {
		return outcome.Outcome{}, oops.Code("TODO_CREATE_FAILED").
			With("operation", "check user exists").
			Wrap(err)
	}
	if !exists {
		return outcome.Fail(TagUserNotFound), nil
	}

	created, err := uc.Todos.Create(ctx, userID, in.String("description"))
	if err != nil {
		return outcome.Outcome{}, oops.Code("TODO_CREATE_FAILED").
			With("operation", "insert todo").
			Wrap(err)
	}

	return outcome.SucceedWith(TagTodoCreated, map[string]any{"todo": created}), nil
}

// Delete removes a task owned by the requesting user.
//
// Failure taxonomy: invalid_attributes, todo_not_found.
type Delete struct {
	Todos Repository
}

// Name implements usecase.UseCase.
func (Delete) Name() string { return "todo.delete" }

// Attrs implements usecase.UseCase.
func (Delete) Attrs() []usecase.Attr { return ownerAttrs() }

// Execute implements usecase.UseCase.
func (uc Delete) Execute(ctx context.Context, in usecase.Values) (outcome.Outcome, error) {
	id, _ := in.Int64("id")
	userID, _ := in.Int64("user_id")

	deleted, err := uc.Todos.DeleteByOwner(ctx, id, userID)
	if err != nil {
		return outcome.Outcome{}, oops.Code("TODO_DELETE_FAILED").
			With("id", id).
			Wrap(err)
	}
	if deleted == 0 {
		return outcome.Fail(TagTodoNotFound), nil
	}

	return outcome.Succeed(TagTodoDeleted), nil
}

// Complete marks a task completed. Re-completing an already-completed
// task still succeeds: failure is reported only when no row matches
// owner and id at all.
//
// Failure taxonomy: invalid_attributes, todo_not_found.
type Complete struct {
	Todos Repository
}

// Name implements usecase.UseCase.
func (Complete) Name() string { return "todo.complete" }

// Attrs implements usecase.UseCase.
func (Complete) Attrs() []usecase.Attr { return ownerAttrs() }

// Execute implements usecase.UseCase.
func (uc Complete) Execute(ctx context.Context, in usecase.Values) (outcome.Outcome, error) {
	now := time.Now()
	return setCompletion(ctx, uc.Todos, in, &now, TagTodoCompleted)
}

// Uncomplete clears a task's completion. Same row-match semantics as
// Complete.
//
// Failure taxonomy: invalid_attributes, todo_not_found.
type Uncomplete struct {
	Todos Repository
}

// Name implements usecase.UseCase.
func (Uncomplete) Name() string { return "todo.uncomplete" }

// Attrs implements usecase.UseCase.
func (Uncomplete) Attrs() []usecase.Attr { return ownerAttrs() }

// Execute implements usecase.UseCase.
func (uc Uncomplete) Execute(ctx context.Context, in usecase.Values) (outcome.Outcome, error) {
	return setCompletion(ctx, uc.Todos, in, nil, TagTodoUncompleted)
}

func setCompletion(ctx context.Context, todos Repository, in usecase.Values, completedAt *time.Time, success outcome.Tag) (outcome.Outcome, error) {
	id, _ := in.Int64("id")
	userID, _ := in.Int64("user_id")

	matched, err := todos.SetCompletion(ctx, id, userID, completedAt)
	if err != nil {
		return outcome.Outcome{}, oops.Code("TODO_UPDATE_FAILED").
			With("id", id).
			Wrap(err)
	}
	if matched == 0 {
		return outcome.Fail(TagTodoNotFound), nil
	}

	return outcome.Succeed(success), nil
}

// Find retrieves one task by id and owner. Its id pair is a lookup scope
// rather than form input, so malformed ids fail as invalid_scope, not
// invalid_attributes.
//
// Failure taxonomy: invalid_scope, todo_not_found.
type Find struct {
	Todos Repository
}

// Name implements usecase.UseCase.
func (Find) Name() string { return "todo.find" }

// Attrs implements usecase.UseCase. No validators: Execute checks the
// scope itself.
func (Find) Attrs() []usecase.Attr {
	return []usecase.Attr{
		{Name: "id", Coerce: usecase.Int},
		{Name: "user_id", Coerce: usecase.Int},
	}
}

// Execute implements usecase.UseCase.
func (uc Find) Execute(ctx context.Context, in usecase.Values) (outcome.Outcome, error) {
	id, idOK := in.Int64("id")
	userID, userOK := in.Int64("user_id")
	if !idOK || !userOK {
		return outcome.Fail(TagInvalidScope), nil
	}

	found, err := uc.Todos.GetByOwner(ctx, id, userID)
	if errors.Is(err, ErrNotFound) {
		return outcome.Fail(TagTodoNotFound), nil
	}
	if err != nil {
		return outcome.Outcome{}, oops.Code("TODO_FIND_FAILED").
			With("id", id).
			Wrap(err)
	}

	return outcome.SucceedWith(TagTodoFound, map[string]any{"todo": found}), nil
}
