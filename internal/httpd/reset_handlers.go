// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package httpd

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donelist/donelist/internal/outcome"
	"github.com/donelist/donelist/internal/user"
	"github.com/donelist/donelist/internal/usecase"
	"github.com/donelist/donelist/pkg/errutil"
)

func (s *Server) handleWebSendResetInstructions(c echo.Context) error {
	o, err := usecase.Execute(c.Request().Context(), user.SendResetInstructions{Users: s.users, Mailer: s.mailer}, map[string]any{
		"email": c.FormValue("email"),
	})
	if err != nil {
		errutil.LogError(s.logger, "send reset instructions failed", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	var resp error
	outcome.NewDispatcher().
		OnSuccess(func(outcome.Outcome) {
			resp = s.redirectWithNotice(c, pathSignIn, "Check your mailbox for the reset instructions.")
		}).
		OnFailure(func(outcome.Outcome) {
			resp = s.redirectWithNotice(c, pathSignIn, "Email not found or invalid.")
		}, outcome.TagInvalidAttributes, user.TagUserNotFound).
		Dispatch(o)
	return resp
}

func (s *Server) handleWebValidateResetToken(c echo.Context) error {
	o, err := usecase.Execute(c.Request().Context(), user.ValidateResetToken{Users: s.users}, map[string]any{
		"token": c.Param("token"),
	})
	if err != nil {
		errutil.LogError(s.logger, "validate reset token failed", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	var resp error
	outcome.NewDispatcher().
		OnSuccess(func(outcome.Outcome) {
			resp = c.String(http.StatusOK, "Choose a new password.\n")
		}).
		OnFailure(func(outcome.Outcome) {
			resp = s.redirectWithNotice(c, pathSignIn, "Invalid or expired reset link.")
		}, user.TagInvalidToken, user.TagUserNotFound).
		Dispatch(o)
	return resp
}

func (s *Server) handleWebResetPassword(c echo.Context) error {
	o, err := usecase.Execute(c.Request().Context(), user.ResetPassword{Users: s.users, Hasher: s.hasher}, map[string]any{
		"token":    c.FormValue("token"),
		"password": c.FormValue("password"),
	})
	if err != nil {
		errutil.LogError(s.logger, "reset password failed", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	var resp error
	outcome.NewDispatcher().
		OnSuccess(func(outcome.Outcome) {
			resp = s.redirectWithNotice(c, pathSignIn, "Your password has been changed. Sign in again.")
		}).
		OnFailure(func(o outcome.Outcome) {
			resp = s.redirectWithNotice(c, pathSignIn, "The password can't be blank.")
		}, outcome.TagInvalidAttributes).
		OnFailure(func(outcome.Outcome) {
			resp = s.redirectWithNotice(c, pathSignIn, "Invalid or expired reset link.")
		}, user.TagInvalidToken, user.TagUserNotFound).
		Dispatch(o)
	return resp
}
