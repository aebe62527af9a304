// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package authn

import (
	"context"
	"errors"

	"github.com/samber/oops"

	"github.com/donelist/donelist/internal/user"
)

// AccessTokenHeader carries the API client token.
const AccessTokenHeader = "X-Access-Token"

// invalidAccessToken is the generic rejection for absent-principal and
// mismatched tokens alike.
const invalidAccessToken = "Invalid access_token"

// APITokenStrategy authenticates API clients by exact token equality.
type APITokenStrategy struct {
	Users user.Repository
}

// Name implements Strategy.
func (APITokenStrategy) Name() string { return "api_token" }

// IsApplicable reports whether the access-token header is non-empty.
func (APITokenStrategy) IsApplicable(req *Request) bool {
	return req.Header.Get(AccessTokenHeader) != ""
}

// Authenticate looks up the principal holding the submitted token.
func (s APITokenStrategy) Authenticate(ctx context.Context, req *Request) (*user.User, *Rejection, error) {
	token := req.Header.Get(AccessTokenHeader)

	principal, err := s.Users.GetByAPIToken(ctx, token)
	if errors.Is(err, user.ErrNotFound) {
		return nil, &Rejection{Message: invalidAccessToken}, nil
	}
	if err != nil {
		return nil, nil, oops.Code("AUTHN_TOKEN_LOOKUP_FAILED").Wrap(err)
	}

	return principal, nil, nil
}
