// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donelist/donelist/internal/authn"
	"github.com/donelist/donelist/pkg/errutil"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock
}

func testSession(t *testing.T) *authn.Session {
	t.Helper()
	s, err := authn.NewSession(7, "somehash", time.Now().Add(authn.SessionTokenExpiry))
	require.NoError(t, err)
	return s
}

func TestSessionRepository_Create(t *testing.T) {
	session := testSession(t)

	t.Run("inserts the row", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(session.ID.String(), session.UserID, session.TokenHash,
				session.ExpiresAt, session.CreatedAt, session.LastSeenAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewSessionRepository(mock)
		require.NoError(t, repo.Create(context.Background(), session))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps database errors", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(session.ID.String(), session.UserID, session.TokenHash,
				session.ExpiresAt, session.CreatedAt, session.LastSeenAt).
			WillReturnError(errors.New("connection refused"))

		repo := NewSessionRepository(mock)
		err := repo.Create(context.Background(), session)

		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "SESSION_INSERT_FAILED")
	})
}

func TestSessionRepository_GetByTokenHash(t *testing.T) {
	now := time.Now()
	id := ulid.Make()

	t.Run("found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM sessions\s+WHERE token_hash = \$1`).
			WithArgs("somehash").
			WillReturnRows(pgxmock.NewRows(
				[]string{"id", "user_id", "token_hash", "expires_at", "created_at", "last_seen_at"}).
				AddRow(id.String(), int64(7), "somehash", now.Add(time.Hour), now, now))

		repo := NewSessionRepository(mock)
		found, err := repo.GetByTokenHash(context.Background(), "somehash")

		require.NoError(t, err)
		assert.Equal(t, id, found.ID)
		assert.Equal(t, int64(7), found.UserID)
		assert.False(t, found.IsExpired())
	})

	t.Run("no row is ErrNoSession", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM sessions\s+WHERE token_hash = \$1`).
			WithArgs("unknown").
			WillReturnRows(pgxmock.NewRows(
				[]string{"id", "user_id", "token_hash", "expires_at", "created_at", "last_seen_at"}))

		repo := NewSessionRepository(mock)
		_, err := repo.GetByTokenHash(context.Background(), "unknown")

		require.ErrorIs(t, err, authn.ErrNoSession)
	})
}

func TestSessionRepository_UpdateLastSeen(t *testing.T) {
	id := ulid.Make()
	seen := time.Now()

	t.Run("updates the row", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`UPDATE sessions SET last_seen_at = \$2 WHERE id = \$1`).
			WithArgs(id.String(), seen).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewSessionRepository(mock)
		require.NoError(t, repo.UpdateLastSeen(context.Background(), id, seen))
	})

	t.Run("missing session is ErrNoSession", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`UPDATE sessions SET last_seen_at = \$2 WHERE id = \$1`).
			WithArgs(id.String(), seen).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewSessionRepository(mock)
		err := repo.UpdateLastSeen(context.Background(), id, seen)

		require.ErrorIs(t, err, authn.ErrNoSession)
	})
}

func TestSessionRepository_DeleteByTokenHash(t *testing.T) {
	t.Run("deletes the row", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`DELETE FROM sessions WHERE token_hash = \$1`).
			WithArgs("somehash").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := NewSessionRepository(mock)
		require.NoError(t, repo.DeleteByTokenHash(context.Background(), "somehash"))
	})

	t.Run("missing row is ErrNoSession", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`DELETE FROM sessions WHERE token_hash = \$1`).
			WithArgs("unknown").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewSessionRepository(mock)
		err := repo.DeleteByTokenHash(context.Background(), "unknown")

		require.ErrorIs(t, err, authn.ErrNoSession)
	})
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(`DELETE FROM sessions WHERE expires_at < now\(\)`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	repo := NewSessionRepository(mock)
	removed, err := repo.DeleteExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}
