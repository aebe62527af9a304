// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package httpd

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/donelist/donelist/internal/outcome"
	"github.com/donelist/donelist/internal/todo"
	"github.com/donelist/donelist/internal/usecase"
	"github.com/donelist/donelist/pkg/errutil"
)

// todoJSON is the API wire shape of a task.
type todoJSON struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func renderTodo(t *todo.Todo) todoJSON {
	return todoJSON{
		ID:          t.ID,
		Description: t.Description,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
	}
}

// --- API scope -----------------------------------------------------------

func (s *Server) handleAPIList(completed bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		todos, err := s.todos.ListByOwner(c.Request().Context(), currentUser(c).ID, completed)
		if err != nil {
			errutil.LogError(s.logger, "list todos failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}

		items := make([]todoJSON, 0, len(todos))
		for _, t := range todos {
			items = append(items, renderTodo(t))
		}
		return c.JSON(http.StatusOK, map[string]any{"todos": items})
	}
}

func (s *Server) handleAPICreate(c echo.Context) error {
	o, err := usecase.Execute(c.Request().Context(), todo.Create{Todos: s.todos, Users: s.users}, map[string]any{
		"user_id":     currentUser(c).ID,
		"description": c.FormValue("description"),
	})
	if err != nil {
		errutil.LogError(s.logger, "create todo failed", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	var resp error
	outcome.NewDispatcher().
		OnSuccess(func(o outcome.Outcome) {
			created, _ := o.Get("todo").(*todo.Todo)
			resp = c.JSON(http.StatusCreated, map[string]any{"todo": renderTodo(created)})
		}).
		OnFailure(func(o outcome.Outcome) {
			resp = c.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": o.Get("errors")})
		}, outcome.TagInvalidAttributes).
		OnFailure(func(o outcome.Outcome) {
			resp = c.JSON(http.StatusNotFound, map[string]any{})
		}, todo.TagUserNotFound).
		Dispatch(o)
	return resp
}

func (s *Server) handleAPIDelete(c echo.Context) error {
	o, err := usecase.Execute(c.Request().Context(), todo.Delete{Todos: s.todos}, map[string]any{
		"id":      c.Param("id"),
		"user_id": currentUser(c).ID,
	})
	if err != nil {
		errutil.LogError(s.logger, "delete todo failed", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	return s.apiOutcomeEmpty(c, o)
}

func (s *Server) handleAPISetCompletion(complete bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := map[string]any{
			"id":      c.Param("id"),
			"user_id": currentUser(c).ID,
		}

		var uc usecase.UseCase = todo.Uncomplete{Todos: s.todos}
		if complete {
			uc = todo.Complete{Todos: s.todos}
		}

		o, err := usecase.Execute(c.Request().Context(), uc, raw)
		if err != nil {
			errutil.LogError(s.logger, "update todo failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}

		return s.apiOutcomeEmpty(c, o)
	}
}

// apiOutcomeEmpty maps the common empty-body outcome contract of the
// API controllers: 200 on success, 404 on todo_not_found, 422 with
// field errors on invalid_attributes. Any other tag is unhandled and
// panics through the dispatcher, surfacing a programming error.
func (s *Server) apiOutcomeEmpty(c echo.Context, o outcome.Outcome) error {
	var resp error
	outcome.NewDispatcher().
		OnSuccess(func(outcome.Outcome) {
			resp = c.JSON(http.StatusOK, map[string]any{})
		}).
		OnFailure(func(outcome.Outcome) {
			resp = c.JSON(http.StatusNotFound, map[string]any{})
		}, todo.TagTodoNotFound).
		OnFailure(func(o outcome.Outcome) {
			resp = c.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": o.Get("errors")})
		}, outcome.TagInvalidAttributes).
		Dispatch(o)
	return resp
}

// --- Web scope -----------------------------------------------------------

func (s *Server) handleWebList(completed bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		todos, err := s.todos.ListByOwner(c.Request().Context(), currentUser(c).ID, completed)
		if err != nil {
			errutil.LogError(s.logger, "list todos failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}

		items := make([]todoJSON, 0, len(todos))
		for _, t := range todos {
			items = append(items, renderTodo(t))
		}
		return c.JSON(http.StatusOK, map[string]any{"todos": items})
	}
}

func (s *Server) handleWebCreate(c echo.Context) error {
	o, err := usecase.Execute(c.Request().Context(), todo.Create{Todos: s.todos, Users: s.users}, map[string]any{
		"user_id":     currentUser(c).ID,
		"description": c.FormValue("description"),
	})
	if err != nil {
		errutil.LogError(s.logger, "create todo failed", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	var resp error
	outcome.NewDispatcher().
		OnSuccess(func(outcome.Outcome) {
			resp = s.redirectWithNotice(c, pathTodosUncompleted, "The to-do has been created.")
		}).
		OnFailure(func(outcome.Outcome) {
			resp = s.redirectWithNotice(c, pathTodosUncompleted, "The description can't be blank.")
		}, outcome.TagInvalidAttributes).
		Dispatch(o)
	return resp
}

func (s *Server) handleWebDelete(c echo.Context) error {
	o, err := usecase.Execute(c.Request().Context(), todo.Delete{Todos: s.todos}, map[string]any{
		"id":      c.Param("id"),
		"user_id": currentUser(c).ID,
	})
	if err != nil {
		errutil.LogError(s.logger, "delete todo failed", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	var resp error
	outcome.NewDispatcher().
		OnSuccess(func(outcome.Outcome) {
			resp = s.redirectWithNotice(c, pathTodosUncompleted, "The to-do has been deleted.")
		}).
		OnFailure(func(outcome.Outcome) {
			resp = s.redirectWithNotice(c, pathTodosUncompleted, "To-do not found or unavailable.")
		}, todo.TagTodoNotFound, outcome.TagInvalidAttributes).
		Dispatch(o)
	return resp
}

func (s *Server) handleWebSetCompletion(complete bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := map[string]any{
			"id":      c.Param("id"),
			"user_id": currentUser(c).ID,
		}

		var uc usecase.UseCase = todo.Uncomplete{Todos: s.todos}
		target := pathTodosUncompleted
		notice := "The to-do has become uncompleted."
		if complete {
			uc = todo.Complete{Todos: s.todos}
			target = pathTodosCompleted
			notice = "The to-do has become completed."
		}

		o, err := usecase.Execute(c.Request().Context(), uc, raw)
		if err != nil {
			errutil.LogError(s.logger, "update todo failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}

		var resp error
		outcome.NewDispatcher().
			OnSuccess(func(outcome.Outcome) {
				resp = s.redirectWithNotice(c, target, notice)
			}).
			OnFailure(func(outcome.Outcome) {
				resp = s.redirectWithNotice(c, pathTodosUncompleted, "To-do not found or unavailable.")
			}, todo.TagTodoNotFound, outcome.TagInvalidAttributes).
			Dispatch(o)
		return resp
	}
}
