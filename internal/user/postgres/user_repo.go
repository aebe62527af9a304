// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

// Package postgres implements the user persistence contracts using
// PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/donelist/donelist/internal/store"
	"github.com/donelist/donelist/internal/user"
)

// ErrEmailTaken is returned when creating an account with an email that
// already exists.
var ErrEmailTaken = errors.New("email already taken")

// UserRepository implements user.Repository using PostgreSQL.
type UserRepository struct {
	db store.Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db store.Querier) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new account and fills in its id.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	now := time.Now()
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, encrypted_password, api_token, reset_password_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`,
		u.Email,
		u.EncryptedPassword,
		u.APIToken,
		u.ResetPasswordToken,
		now,
		now,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("USER_EMAIL_TAKEN").
			With("email", u.Email).
			Wrap(ErrEmailTaken)
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an account by id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, encrypted_password, api_token, reset_password_token, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)

	found, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(user.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("id", id).
			Wrap(err)
	}
	return found, nil
}

// GetByEmail retrieves an account by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, encrypted_password, api_token, reset_password_token, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)

	found, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(user.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").Wrap(err)
	}
	return found, nil
}

// GetByAPIToken retrieves an account by exact API token equality.
func (r *UserRepository) GetByAPIToken(ctx context.Context, token string) (*user.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, encrypted_password, api_token, reset_password_token, created_at, updated_at
		FROM users
		WHERE api_token = $1
	`, token)

	found, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(user.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_TOKEN_FAILED").Wrap(err)
	}
	return found, nil
}

// Exists reports whether an account with the given id exists.
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").
			With("id", id).
			Wrap(err)
	}
	return exists, nil
}

// SetResetToken stores a reset token on the account matching email.
func (r *UserRepository) SetResetToken(ctx context.Context, email, token string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET reset_password_token = $2, updated_at = $3
		WHERE LOWER(email) = LOWER($1)
	`, email, token, time.Now())
	if err != nil {
		return 0, oops.Code("USER_SET_RESET_TOKEN_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}

// ExistsByResetToken reports whether any account holds the token.
func (r *UserRepository) ExistsByResetToken(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE reset_password_token = $1)
	`, token).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_RESET_TOKEN_CHECK_FAILED").Wrap(err)
	}
	return exists, nil
}

// ResetPassword replaces the password hash and clears the reset token
// on the account holding it.
func (r *UserRepository) ResetPassword(ctx context.Context, token, encryptedPassword string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET encrypted_password = $2, reset_password_token = NULL, updated_at = $3
		WHERE reset_password_token = $1
	`, token, encryptedPassword, time.Now())
	if err != nil {
		return 0, oops.Code("USER_RESET_PASSWORD_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.EncryptedPassword, &u.APIToken, &u.ResetPasswordToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context
	}
	return &u, nil
}
