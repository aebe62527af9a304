// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package httpd

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/donelist/donelist/internal/authn"
	"github.com/donelist/donelist/pkg/errutil"
)

// handleSignInPage is the sign-in entry point the web fallback
// redirects to. HTML rendering is out of scope; it answers plain text
// with any notice from the redirect.
func (s *Server) handleSignInPage(c echo.Context) error {
	notice := c.QueryParam("notice")
	if notice != "" {
		return c.String(http.StatusOK, notice+"\n")
	}
	return c.String(http.StatusOK, "Sign in with email and password.\n")
}

// handleLogin authenticates the submitted credentials under the user
// scope. Success persists a session and sets the cookie; failure runs
// the scope fallback with the strategy's generic message.
func (s *Server) handleLogin(c echo.Context) error {
	result, err := s.manager.Authenticate(c.Request().Context(), authn.ScopeUser, &authn.Request{
		Header: c.Request().Header,
		Params: map[string]string{
			"email":    c.FormValue("email"),
			"password": c.FormValue("password"),
		},
	})
	if err != nil {
		errutil.LogError(s.logger, "login failed", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	if !result.Authenticated() {
		return s.fallback(c, result)
	}

	c.SetCookie(s.sessionCookie(result.SessionToken, authn.SessionTokenExpiry))
	return s.redirectWithNotice(c, pathTodosUncompleted, "")
}

// handleLogout clears the session row and expires the cookie.
func (s *Server) handleLogout(c echo.Context) error {
	if cookie, err := c.Cookie(s.opts.SessionCookie); err == nil && cookie.Value != "" {
		if err := s.manager.ClearSession(c.Request().Context(), cookie.Value); err != nil {
			errutil.LogError(s.logger, "logout failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
	}

	c.SetCookie(s.sessionCookie("", -time.Hour))
	return s.redirectWithNotice(c, pathSignIn, "")
}

func (s *Server) sessionCookie(value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     s.opts.SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(maxAge),
	}
}
