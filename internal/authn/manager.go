// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package authn

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/donelist/donelist/internal/user"
)

// Result is the terminal state of one authentication attempt. Either
// Principal is set (authenticated) or Fallback and Message describe the
// rejection. SessionToken is set only for authenticated requests in a
// scope that persists session state.
type Result struct {
	Principal    *user.User
	SessionToken string
	Strategy     string
	Fallback     FallbackAction
	Message      string
}

// Authenticated reports whether a principal was resolved.
func (r *Result) Authenticated() bool {
	return r.Principal != nil
}

// MessageUnauthenticated is the generic message shown when a browser
// request carries no usable credentials.
const MessageUnauthenticated = "You need to sign in or sign up before continuing."

// Manager resolves which strategy applies to a request, invokes it, and
// converts its verdict into session state or a rejection. It holds only
// read-only configuration and is safe for concurrent use.
type Manager struct {
	registry   *Registry
	serializer *Serializer
	logger     *slog.Logger
}

// NewManager creates a Manager. The serializer may be nil when no
// configured scope persists session state.
func NewManager(registry *Registry, serializer *Serializer, logger *slog.Logger) (*Manager, error) {
	if registry == nil {
		return nil, oops.Code("AUTHN_MANAGER_INVALID").Errorf("registry is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{registry: registry, serializer: serializer, logger: logger}, nil
}

// Authenticate runs the scope's strategies in registration order. The
// first applicable strategy decides the outcome; remaining strategies
// are not tried even if it fails. No retries happen within one request.
//
// An unregistered scope is a configuration error, not a rejection.
func (m *Manager) Authenticate(ctx context.Context, scopeName ScopeName, req *Request) (*Result, error) {
	scope, ok := m.registry.Lookup(scopeName)
	if !ok {
		return nil, oops.Code("AUTHN_UNKNOWN_SCOPE").
			With("scope", string(scopeName)).
			Errorf("scope %q is not registered", scopeName)
	}

	var chosen Strategy
	for _, s := range scope.Strategies {
		if s.IsApplicable(req) {
			chosen = s
			break
		}
	}

	if chosen == nil {
		authAttempts.WithLabelValues(string(scope.Name), "none", StatusNotApplicable).Inc()
		return &Result{Fallback: scope.Fallback, Message: MessageUnauthenticated}, nil
	}

	principal, rejection, err := chosen.Authenticate(ctx, req)
	if err != nil {
		authAttempts.WithLabelValues(string(scope.Name), chosen.Name(), StatusError).Inc()
		return nil, oops.Code("AUTHN_STRATEGY_FAILED").
			With("scope", string(scope.Name)).
			With("strategy", chosen.Name()).
			Wrap(err)
	}

	if rejection != nil {
		authAttempts.WithLabelValues(string(scope.Name), chosen.Name(), StatusRejected).Inc()
		m.logger.Info("authentication rejected",
			"scope", string(scope.Name),
			"strategy", chosen.Name(),
		)
		return &Result{
			Strategy: chosen.Name(),
			Fallback: scope.Fallback,
			Message:  rejection.Message,
		}, nil
	}

	result := &Result{Principal: principal, Strategy: chosen.Name()}

	if scope.Store {
		if m.serializer == nil {
			return nil, oops.Code("AUTHN_MANAGER_INVALID").
				With("scope", string(scope.Name)).
				Errorf("scope persists sessions but no serializer is configured")
		}
		token, err := m.serializer.Serialize(ctx, principal)
		if err != nil {
			authAttempts.WithLabelValues(string(scope.Name), chosen.Name(), StatusError).Inc()
			return nil, err
		}
		result.SessionToken = token
	}

	authAttempts.WithLabelValues(string(scope.Name), chosen.Name(), StatusAuthenticated).Inc()
	m.logger.Info("authentication succeeded",
		"scope", string(scope.Name),
		"strategy", chosen.Name(),
		"user_id", principal.ID,
	)
	return result, nil
}

// CurrentPrincipal reconstitutes the principal from a session token for
// a later request. An empty or unknown token yields (nil, nil):
// anonymous. A token whose principal no longer resolves is a contract
// violation and returns a fatal error.
func (m *Manager) CurrentPrincipal(ctx context.Context, token string) (*user.User, error) {
	if m.serializer == nil || token == "" {
		return nil, nil
	}
	return m.serializer.Deserialize(ctx, token)
}

// ClearSession removes the session behind the token, if any. Used on
// logout.
func (m *Manager) ClearSession(ctx context.Context, token string) error {
	if m.serializer == nil || token == "" {
		return nil
	}
	return m.serializer.Clear(ctx, token)
}
