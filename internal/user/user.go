// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

// Package user provides the account domain: the principal record, its
// persistence contract, password hashing, and the authentication and
// reset-password use cases.
package user

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested account does not exist.
var ErrNotFound = errors.New("not found")

// User is the principal resolved by authentication.
type User struct {
	ID                 int64
	Email              string
	EncryptedPassword  string
	APIToken           string
	ResetPasswordToken *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Repository manages account persistence.
type Repository interface {
	// Create stores a new account and fills in its id.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves an account by id.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves an account by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByAPIToken retrieves an account by exact API token equality.
	GetByAPIToken(ctx context.Context, token string) (*User, error)

	// Exists reports whether an account with the given id exists.
	Exists(ctx context.Context, id int64) (bool, error)

	// SetResetToken stores a reset token on the account matching email,
	// returning the number of rows matched (zero when no account has
	// that email).
	SetResetToken(ctx context.Context, email, token string) (int64, error)

	// ExistsByResetToken reports whether any account holds the token.
	ExistsByResetToken(ctx context.Context, token string) (bool, error)

	// ResetPassword replaces the password hash and clears the reset
	// token on the account holding it, returning rows matched.
	ResetPassword(ctx context.Context, token, encryptedPassword string) (int64, error)
}

// ResetMailer delivers reset-password instructions. Delivery is handed
// off fire-and-forget; the use case never waits on it.
type ResetMailer interface {
	DeliverResetInstructions(email, token string)
}
