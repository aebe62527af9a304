// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package authn

import (
	"context"

	"github.com/donelist/donelist/internal/outcome"
	"github.com/donelist/donelist/internal/usecase"
	"github.com/donelist/donelist/internal/user"
)

// incorrectCredentials is the single message for every password
// rejection. Whether the email existed is never leaked.
const incorrectCredentials = "Incorrect email or password."

// PasswordStrategy authenticates browser sign-in forms through the
// user.Authenticate use case.
type PasswordStrategy struct {
	Users  user.Repository
	Hasher user.PasswordHasher
}

// Name implements Strategy.
func (PasswordStrategy) Name() string { return "password" }

// IsApplicable reports whether both email and password were submitted.
func (PasswordStrategy) IsApplicable(req *Request) bool {
	return req.Param("email") != "" && req.Param("password") != ""
}

// Authenticate runs the authentication use case and collapses every
// failure tag into one generic rejection.
func (s PasswordStrategy) Authenticate(ctx context.Context, req *Request) (*user.User, *Rejection, error) {
	o, err := usecase.Execute(ctx, user.Authenticate{Users: s.Users, Hasher: s.Hasher}, map[string]any{
		"email":    req.Param("email"),
		"password": req.Param("password"),
	})
	if err != nil {
		return nil, nil, err
	}

	var principal *user.User
	var rejection *Rejection

	outcome.NewDispatcher().
		OnSuccess(func(o outcome.Outcome) {
			principal, _ = o.Get("user").(*user.User)
		}).
		OnUnknown(func(outcome.Outcome) {
			rejection = &Rejection{Message: incorrectCredentials}
		}).
		Dispatch(o)

	return principal, rejection, nil
}
