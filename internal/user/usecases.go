// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package user

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/donelist/donelist/internal/outcome"
	"github.com/donelist/donelist/internal/usecase"
)

// Outcome tags produced by account use cases.
const (
	TagUserFound             outcome.Tag = "user_found"
	TagUserNotFound          outcome.Tag = "user_not_found"
	TagInvalidPassword       outcome.Tag = "invalid_password"
	TagInstructionsDelivered outcome.Tag = "instructions_delivered"
	TagValidToken            outcome.Tag = "valid_token"
	TagInvalidToken          outcome.Tag = "invalid_token"
	TagPasswordChanged       outcome.Tag = "password_changed"
)

// uuidPattern is the wire shape of a reset token: lowercase hex UUID.
var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Authenticate resolves an account by email and password.
//
// Failure tags, user_not_found and invalid_password, are distinct in the
// outcome but must never be distinguished to the client: the password
// strategy collapses both into one generic message. Verification runs
// against a dummy hash when the email is unknown so response time stays
// constant.
//
// Failure taxonomy: user_not_found, invalid_password.
type Authenticate struct {
	Users  Repository
	Hasher PasswordHasher
}

// Name implements usecase.UseCase.
func (Authenticate) Name() string { return "user.authenticate" }

// Attrs implements usecase.UseCase. Credentials are normalized, never
// validated here: a malformed email is simply an unknown account.
func (Authenticate) Attrs() []usecase.Attr {
	return []usecase.Attr{
		{Name: "email", Coerce: usecase.Email},
		{Name: "password", Coerce: identity},
	}
}

// identity keeps the raw password byte-for-byte; trimming a password
// would change its meaning.
func identity(raw any) any {
	s, _ := raw.(string)
	return s
}

// Execute implements usecase.UseCase.
func (uc Authenticate) Execute(ctx context.Context, in usecase.Values) (outcome.Outcome, error) {
	found, lookupErr := uc.Users.GetByEmail(ctx, in.String("email"))

	targetHash := DummyPasswordHash
	if lookupErr == nil {
		targetHash = found.EncryptedPassword
	} else if !errors.Is(lookupErr, ErrNotFound) {
		return outcome.Outcome{}, oops.Code("AUTH_PROCESS_FAILED").
			With("operation", "get user by email").
			Wrap(lookupErr)
	}

	// Always verify, constant-time, so unknown emails cost the same as
	// wrong passwords.
	valid, verifyErr := uc.Hasher.Verify(in.String("password"), targetHash)
	if verifyErr != nil {
		if lookupErr != nil {
			return outcome.Fail(TagUserNotFound), nil
		}
		return outcome.Outcome{}, oops.Code("AUTH_PROCESS_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if lookupErr != nil {
		return outcome.Fail(TagUserNotFound), nil
	}
	if !valid {
		return outcome.Fail(TagInvalidPassword), nil
	}

	return outcome.SucceedWith(TagUserFound, map[string]any{"user": found}), nil
}

// GetByID resolves an account by id. Used by the session serializer to
// reconstitute the principal on each request.
//
// Failure taxonomy: invalid_attributes, user_not_found.
type GetByID struct {
	Users Repository
}

// Name implements usecase.UseCase.
func (GetByID) Name() string { return "user.get_by_id" }

// Attrs implements usecase.UseCase.
func (GetByID) Attrs() []usecase.Attr {
	return []usecase.Attr{
		{Name: "id", Coerce: usecase.Int, Validators: []usecase.Validator{usecase.Integer()}},
	}
}

// Execute implements usecase.UseCase.
func (uc GetByID) Execute(ctx context.Context, in usecase.Values) (outcome.Outcome, error) {
	id, _ := in.Int64("id")

	found, err := uc.Users.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return outcome.Fail(TagUserNotFound), nil
	}
	if err != nil {
		return outcome.Outcome{}, oops.Code("USER_GET_BY_ID_FAILED").
			With("id", id).
			Wrap(err)
	}

	return outcome.SucceedWith(TagUserFound, map[string]any{"user": found}), nil
}

// SendResetInstructions issues a reset token for the account matching
// email and hands delivery to the mailer fire-and-forget.
//
// Failure taxonomy: invalid_attributes, user_not_found.
type SendResetInstructions struct {
	Users  Repository
	Mailer ResetMailer
}

// Name implements usecase.UseCase.
func (SendResetInstructions) Name() string { return "user.send_reset_instructions" }

// Attrs implements usecase.UseCase.
func (SendResetInstructions) Attrs() []usecase.Attr {
	return []usecase.Attr{
		{Name: "email", Coerce: usecase.Email, Validators: []usecase.Validator{usecase.EmailFormat()}},
	}
}

// Execute implements usecase.UseCase.
func (uc SendResetInstructions) Execute(ctx context.Context, in usecase.Values) (outcome.Outcome, error) {
	email := in.String("email")
	token := uuid.NewString()

	matched, err := uc.Users.SetResetToken(ctx, email, token)
	if err != nil {
		return outcome.Outcome{}, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "set reset token").
			Wrap(err)
	}
	if matched == 0 {
		return outcome.Fail(TagUserNotFound), nil
	}

	uc.Mailer.DeliverResetInstructions(email, token)

	return outcome.Succeed(TagInstructionsDelivered), nil
}

// ValidateResetToken checks a reset token's shape, then its existence.
//
// Failure taxonomy: invalid_token, user_not_found.
type ValidateResetToken struct {
	Users Repository
}

// Name implements usecase.UseCase.
func (ValidateResetToken) Name() string { return "user.validate_reset_token" }

// Attrs implements usecase.UseCase.
func (ValidateResetToken) Attrs() []usecase.Attr {
	return []usecase.Attr{
		{Name: "token", Coerce: usecase.String},
	}
}

// Execute implements usecase.UseCase.
func (uc ValidateResetToken) Execute(ctx context.Context, in usecase.Values) (outcome.Outcome, error) {
	token := in.String("token")

	if !uuidPattern.MatchString(token) {
		return outcome.Fail(TagInvalidToken), nil
	}

	exists, err := uc.Users.ExistsByResetToken(ctx, token)
	if err != nil {
		return outcome.Outcome{}, oops.Code("RESET_VALIDATE_FAILED").
			With("operation", "check reset token").
			Wrap(err)
	}
	if !exists {
		return outcome.Fail(TagUserNotFound), nil
	}

	return outcome.Succeed(TagValidToken), nil
}

// ResetPassword replaces the password of the account holding a valid
// reset token and clears the token.
//
// Failure taxonomy: invalid_attributes, invalid_token, user_not_found.
type ResetPassword struct {
	Users  Repository
	Hasher PasswordHasher
}

// Name implements usecase.UseCase.
func (ResetPassword) Name() string { return "user.reset_password" }

// Attrs implements usecase.UseCase.
func (ResetPassword) Attrs() []usecase.Attr {
	return []usecase.Attr{
		{Name: "token", Coerce: usecase.String},
		{Name: "password", Coerce: identity, Validators: []usecase.Validator{usecase.Presence()}},
	}
}

// Execute implements usecase.UseCase.
func (uc ResetPassword) Execute(ctx context.Context, in usecase.Values) (outcome.Outcome, error) {
	token := in.String("token")
	if !uuidPattern.MatchString(token) {
		return outcome.Fail(TagInvalidToken), nil
	}

	encrypted, err := uc.Hasher.Hash(in.String("password"))
	if err != nil {
		return outcome.Outcome{}, oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	matched, err := uc.Users.ResetPassword(ctx, token, encrypted)
	if err != nil {
		return outcome.Outcome{}, oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "update password").
			Wrap(err)
	}
	if matched == 0 {
		return outcome.Fail(TagUserNotFound), nil
	}

	return outcome.Succeed(TagPasswordChanged), nil
}
