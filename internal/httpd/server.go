// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

// Package httpd is the thin HTTP edge: routing glue that maps requests
// onto use-case invocations and authentication onto the manager. No
// business rules live here.
package httpd

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/oops"

	"github.com/donelist/donelist/internal/authn"
	"github.com/donelist/donelist/internal/todo"
	"github.com/donelist/donelist/internal/user"
)

// Paths the web scope redirects to.
const (
	pathSignIn           = "/sign_in"
	pathTodosUncompleted = "/todos/uncompleted"
	pathTodosCompleted   = "/todos/completed"
)

// contextKeyUser stores the current principal on the echo context.
const contextKeyUser = "current_user"

// Options configures a Server.
type Options struct {
	Addr          string
	SessionCookie string
	SecureCookies bool
}

// Server wires the authentication manager and the use cases to HTTP.
type Server struct {
	echo    *echo.Echo
	manager *authn.Manager
	logger  *slog.Logger
	opts    Options

	todos  todo.Repository
	users  user.Repository
	hasher user.PasswordHasher
	mailer user.ResetMailer
}

// NewServer creates a Server and registers its routes.
func NewServer(
	opts Options,
	manager *authn.Manager,
	todos todo.Repository,
	users user.Repository,
	hasher user.PasswordHasher,
	resetMailer user.ResetMailer,
	logger *slog.Logger,
) (*Server, error) {
	if manager == nil {
		return nil, oops.Code("HTTPD_INVALID").Errorf("authentication manager is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:    e,
		manager: manager,
		logger:  logger,
		opts:    opts,
		todos:   todos,
		users:   users,
		hasher:  hasher,
		mailer:  resetMailer,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	e := s.echo

	// Browser scope
	e.GET(pathSignIn, s.handleSignInPage)
	e.POST("/session", s.handleLogin)
	e.DELETE("/session", s.handleLogout)
	e.POST("/users/reset_password", s.handleWebSendResetInstructions)
	e.GET("/users/reset_password/:token", s.handleWebValidateResetToken)
	e.PATCH("/users/reset_password", s.handleWebResetPassword)

	web := e.Group("/todos", s.webPrincipal, s.requireWebPrincipal)
	web.GET("/uncompleted", s.handleWebList(false))
	web.GET("/completed", s.handleWebList(true))
	web.POST("", s.handleWebCreate)
	web.DELETE("/:id", s.handleWebDelete)
	web.PATCH("/:id/complete", s.handleWebSetCompletion(true))
	web.PATCH("/:id/uncomplete", s.handleWebSetCompletion(false))

	// API scope
	api := e.Group("/api/v1", s.apiAuth)
	api.GET("/todos/uncompleted", s.handleAPIList(false))
	api.GET("/todos/completed", s.handleAPIList(true))
	api.POST("/todos", s.handleAPICreate)
	api.DELETE("/todos/:id", s.handleAPIDelete)
	api.PATCH("/todos/:id/complete", s.handleAPISetCompletion(true))
	api.PATCH("/todos/:id/uncomplete", s.handleAPISetCompletion(false))
}

// Start begins serving. It blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	if err := s.echo.Start(s.opts.Addr); err != nil && err != http.ErrServerClosed {
		return oops.Code("HTTPD_START_FAILED").With("addr", s.opts.Addr).Wrap(err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return oops.Code("HTTPD_SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// fallback runs the scope-specific rejection path for a terminal
// authentication failure. An unconfigured action is a programming
// error, matching the dispatcher's unhandled-outcome contract.
func (s *Server) fallback(c echo.Context, result *authn.Result) error {
	switch result.Fallback {
	case authn.FallbackWebSignIn:
		return s.redirectWithNotice(c, pathSignIn, result.Message)
	case authn.FallbackAPIUnauthorized:
		return c.JSON(http.StatusUnauthorized, map[string]any{})
	default:
		panic(oops.Code("AUTHN_UNKNOWN_FALLBACK").
			With("action", string(result.Fallback)).
			Errorf("no handler for fallback action %q", result.Fallback))
	}
}

// redirectWithNotice issues a see-other redirect carrying a user-facing
// message. Flash messages need HTML views, which are out of scope, so
// the notice travels as a query parameter instead.
func (s *Server) redirectWithNotice(c echo.Context, path, notice string) error {
	if notice != "" {
		path = path + "?notice=" + url.QueryEscape(notice)
	}
	return c.Redirect(http.StatusSeeOther, path)
}

// currentUser returns the principal resolved by middleware, if any.
func currentUser(c echo.Context) *user.User {
	u, _ := c.Get(contextKeyUser).(*user.User)
	return u
}
