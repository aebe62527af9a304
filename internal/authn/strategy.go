// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

// Package authn provides pluggable request authentication: an ordered
// strategy registry per client scope, the manager that resolves which
// strategy decides a request, and the session serializer that persists
// the resolved principal.
package authn

import (
	"context"
	"net/http"

	"github.com/donelist/donelist/internal/user"
)

// Request carries the credential material a strategy inspects: submitted
// parameters (e.g. a sign-in form) and request headers. It deliberately
// excludes everything else about the HTTP request.
type Request struct {
	Header http.Header
	Params map[string]string
}

// Param returns the named submitted parameter, or "".
func (r *Request) Param(name string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[name]
}

// Rejection is the reason a strategy refused a request. Messages are
// generic by contract: they never reveal which sub-check failed.
type Rejection struct {
	Message string
}

// Strategy is one pluggable authentication method.
//
// Applicability and authentication are separate checks: a strategy can
// be applicable (its credentials are present) and still fail to
// authenticate (the credentials are wrong). The first applicable
// strategy in a scope decides the request; later strategies are not
// consulted even when it fails.
type Strategy interface {
	// Name identifies the strategy in scope configuration and metrics.
	Name() string

	// IsApplicable reports whether the request carries this strategy's
	// credentials.
	IsApplicable(req *Request) bool

	// Authenticate attempts to resolve a principal. Exactly one of the
	// principal and the rejection is non-nil on a nil error; a non-nil
	// error is an infrastructure fault.
	Authenticate(ctx context.Context, req *Request) (*user.User, *Rejection, error)
}
