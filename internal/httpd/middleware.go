// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package httpd

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donelist/donelist/internal/authn"
	"github.com/donelist/donelist/pkg/errutil"
)

// webPrincipal resolves the principal behind the session cookie, if
// any. An unresolvable principal is a contract violation and aborts
// with 500 rather than degrading to anonymous.
func (s *Server) webPrincipal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(s.opts.SessionCookie)
		if err != nil || cookie.Value == "" {
			return next(c)
		}

		principal, err := s.manager.CurrentPrincipal(c.Request().Context(), cookie.Value)
		if err != nil {
			errutil.LogError(s.logger, "session deserialization failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		if principal != nil {
			c.Set(contextKeyUser, principal)
		}
		return next(c)
	}
}

// requireWebPrincipal runs the web scope's fallback for anonymous
// requests.
func (s *Server) requireWebPrincipal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUser(c) == nil {
			return s.fallback(c, &authn.Result{
				Fallback: authn.FallbackWebSignIn,
				Message:  authn.MessageUnauthenticated,
			})
		}
		return next(c)
	}
}

// apiAuth authenticates every API request through the manager. The api
// scope persists no session state; each request carries its token.
func (s *Server) apiAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		result, err := s.manager.Authenticate(c.Request().Context(), authn.ScopeAPI, &authn.Request{
			Header: c.Request().Header,
		})
		if err != nil {
			errutil.LogError(s.logger, "api authentication failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		if !result.Authenticated() {
			return s.fallback(c, result)
		}

		c.Set(contextKeyUser, result.Principal)
		return next(c)
	}
}
