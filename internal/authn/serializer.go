// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package authn

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/donelist/donelist/internal/outcome"
	"github.com/donelist/donelist/internal/usecase"
	"github.com/donelist/donelist/internal/user"
)

// ErrNoSession is returned by SessionRepository lookups that match no
// row. The serializer treats it as anonymous.
var ErrNoSession = errors.New("no session")

// Serializer converts an authenticated principal to and from a durable
// session token. On login it stores only the principal's id; on each
// later request it reconstitutes the principal by that id.
type Serializer struct {
	sessions SessionRepository
	users    user.Repository
}

// NewSerializer creates a Serializer.
func NewSerializer(sessions SessionRepository, users user.Repository) (*Serializer, error) {
	if sessions == nil {
		return nil, oops.Code("SERIALIZER_INVALID").Errorf("session repository is required")
	}
	if users == nil {
		return nil, oops.Code("SERIALIZER_INVALID").Errorf("user repository is required")
	}
	return &Serializer{sessions: sessions, users: users}, nil
}

// Serialize persists a session for the principal and returns the
// plaintext token for the client cookie.
func (s *Serializer) Serialize(ctx context.Context, principal *user.User) (string, error) {
	token, hash, err := GenerateSessionToken()
	if err != nil {
		return "", err
	}

	session, err := NewSession(principal.ID, hash, time.Now().Add(SessionTokenExpiry))
	if err != nil {
		return "", err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", oops.Code("SESSION_CREATE_FAILED").
			With("user_id", principal.ID).
			Wrap(err)
	}

	return token, nil
}

// Deserialize resolves the principal behind a session token.
//
// An unknown or expired token is anonymous: (nil, nil). A live session
// whose principal id no longer resolves is a contract violation — the
// system must not guess its way around it — and returns a fatal coded
// error for the integrator to surface.
func (s *Serializer) Deserialize(ctx context.Context, token string) (*user.User, error) {
	session, err := s.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if errors.Is(err, ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("SESSION_LOOKUP_FAILED").Wrap(err)
	}
	if session.IsExpired() {
		return nil, nil
	}

	// Best effort; deserialization succeeds regardless.
	_ = s.sessions.UpdateLastSeen(ctx, session.ID, time.Now()) //nolint:errcheck

	principal, err := s.resolve(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return principal, nil
}

// resolve runs the GetByID use case and consumes its outcome. Any
// failure tag here means the session points at a principal that no
// longer exists or an id that should never have been serialized.
func (s *Serializer) resolve(ctx context.Context, id int64) (*user.User, error) {
	o, err := usecase.Execute(ctx, user.GetByID{Users: s.users}, map[string]any{"id": id})
	if err != nil {
		return nil, oops.Code("SESSION_PRINCIPAL_LOOKUP_FAILED").
			With("user_id", id).
			Wrap(err)
	}

	var principal *user.User
	var fatal error

	outcome.NewDispatcher().
		OnSuccess(func(o outcome.Outcome) {
			principal, _ = o.Get("user").(*user.User)
		}).
		OnUnknown(func(o outcome.Outcome) {
			fatal = oops.Code("SESSION_PRINCIPAL_UNRESOLVED").
				With("user_id", id).
				With("tag", string(o.Tag())).
				Errorf("session references user %d which no longer resolves", id)
		}).
		Dispatch(o)

	return principal, fatal
}

// Clear deletes the session behind the token. A token with no session
// is a no-op.
func (s *Serializer) Clear(ctx context.Context, token string) error {
	err := s.sessions.DeleteByTokenHash(ctx, HashSessionToken(token))
	if err != nil && !errors.Is(err, ErrNoSession) {
		return oops.Code("SESSION_CLEAR_FAILED").Wrap(err)
	}
	return nil
}
