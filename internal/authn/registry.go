// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package authn

import (
	"github.com/samber/oops"
)

// ScopeName is a client category with its own strategy order,
// persistence policy, and failure fallback.
type ScopeName string

// The two client scopes.
const (
	ScopeUser ScopeName = "user" // browser sessions
	ScopeAPI  ScopeName = "api"  // token clients
)

// FallbackAction names the scope-specific path that runs when
// authentication is rejected.
type FallbackAction string

// Fallback actions.
const (
	FallbackWebSignIn       FallbackAction = "unauthenticated_web"
	FallbackAPIUnauthorized FallbackAction = "unauthenticated_api"
)

// Scope holds one client category's defaults: whether a successful
// authentication persists session state, which fallback runs on
// rejection, and the ordered strategies to try.
type Scope struct {
	Name       ScopeName
	Store      bool
	Fallback   FallbackAction
	Strategies []Strategy
}

// Registry is the set of configured scopes. It is populated once during
// start-up and read-only thereafter, so concurrent reads by many
// simultaneous requests need no locking.
type Registry struct {
	scopes map[ScopeName]*Scope
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{scopes: make(map[ScopeName]*Scope)}
}

// Register adds a scope. Registering the same scope name twice, a scope
// without strategies, or a scope without a fallback is a configuration
// error.
func (r *Registry) Register(scope *Scope) error {
	if scope == nil || scope.Name == "" {
		return oops.Code("AUTHN_INVALID_SCOPE").Errorf("scope name is required")
	}
	if len(scope.Strategies) == 0 {
		return oops.Code("AUTHN_INVALID_SCOPE").
			With("scope", string(scope.Name)).
			Errorf("scope requires at least one strategy")
	}
	if scope.Fallback == "" {
		return oops.Code("AUTHN_INVALID_SCOPE").
			With("scope", string(scope.Name)).
			Errorf("scope requires a fallback action")
	}
	if _, dup := r.scopes[scope.Name]; dup {
		return oops.Code("AUTHN_DUPLICATE_SCOPE").
			With("scope", string(scope.Name)).
			Errorf("scope %q already registered", scope.Name)
	}
	r.scopes[scope.Name] = scope
	return nil
}

// Lookup returns the scope registered under name.
func (r *Registry) Lookup(name ScopeName) (*Scope, bool) {
	scope, ok := r.scopes[name]
	return scope, ok
}
