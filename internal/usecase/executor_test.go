// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donelist/donelist/internal/outcome"
)

// stubUseCase records the Values it was executed with.
type stubUseCase struct {
	attrs    []Attr
	result   outcome.Outcome
	err      error
	executed bool
	got      Values
}

func (s *stubUseCase) Name() string  { return "stub" }
func (s *stubUseCase) Attrs() []Attr { return s.attrs }

func (s *stubUseCase) Execute(_ context.Context, in Values) (outcome.Outcome, error) {
	s.executed = true
	s.got = in
	return s.result, s.err
}

func TestExecute_CoercesAndValidates(t *testing.T) {
	uc := &stubUseCase{
		attrs: []Attr{
			{Name: "description", Coerce: String, Validators: []Validator{Presence()}},
			{Name: "user_id", Coerce: Int, Validators: []Validator{Integer()}},
		},
		result: outcome.Succeed("todo_created"),
	}

	o, err := Execute(context.Background(), uc, map[string]any{
		"description": "  buy milk ",
		"user_id":     "7",
	})

	require.NoError(t, err)
	require.True(t, uc.executed)
	assert.True(t, o.IsSuccess())
	assert.Equal(t, "buy milk", uc.got.String("description"))

	id, ok := uc.got.Int64("user_id")
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestExecute_InvalidAttributes(t *testing.T) {
	uc := &stubUseCase{
		attrs: []Attr{
			{Name: "description", Coerce: String, Validators: []Validator{Presence()}},
		},
	}

	o, err := Execute(context.Background(), uc, map[string]any{"description": "  "})

	require.NoError(t, err)
	assert.False(t, uc.executed, "domain logic must not run on invalid input")
	assert.True(t, o.IsFailure())
	assert.Equal(t, outcome.TagInvalidAttributes, o.Tag())

	errs, ok := o.Get("errors").(Errors)
	require.True(t, ok)
	assert.Equal(t, []string{"can't be blank"}, errs["description"])
}

func TestExecute_AccumulatesAllAttributeErrors(t *testing.T) {
	uc := &stubUseCase{
		attrs: []Attr{
			{Name: "email", Coerce: Email, Validators: []Validator{EmailFormat()}},
			{Name: "user_id", Coerce: Int, Validators: []Validator{Integer()}},
		},
	}

	o, err := Execute(context.Background(), uc, map[string]any{
		"email":   "not-an-email",
		"user_id": "1.5",
	})

	require.NoError(t, err)
	require.Equal(t, outcome.TagInvalidAttributes, o.Tag())

	errs, ok := o.Get("errors").(Errors)
	require.True(t, ok)
	assert.Len(t, errs, 2, "every offending attribute must be reported")
	assert.Equal(t, []string{"is invalid"}, errs["email"])
	assert.Equal(t, []string{"is not an integer"}, errs["user_id"])
}

func TestExecute_MissingAttributesTreatedAsAbsent(t *testing.T) {
	uc := &stubUseCase{
		attrs: []Attr{
			{Name: "user_id", Coerce: Int, Validators: []Validator{Integer()}},
		},
	}

	o, err := Execute(context.Background(), uc, map[string]any{})

	require.NoError(t, err)
	assert.Equal(t, outcome.TagInvalidAttributes, o.Tag())
}

func TestExecute_NoValidatorsPassesRawThrough(t *testing.T) {
	uc := &stubUseCase{
		attrs: []Attr{
			{Name: "id", Coerce: Int},
		},
		result: outcome.Succeed("todo_found"),
	}

	_, err := Execute(context.Background(), uc, map[string]any{"id": "abc"})

	require.NoError(t, err)
	require.True(t, uc.executed, "without validators the use case decides what to do with bad input")
	_, ok := uc.got.Int64("id")
	assert.False(t, ok, "uncoercible input stays non-integer for the use case to inspect")
}

func TestExecute_InfrastructureErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	uc := &stubUseCase{err: boom}

	_, err := Execute(context.Background(), uc, nil)

	require.ErrorIs(t, err, boom, "infrastructure faults travel the error channel, not the outcome")
}

func TestValues_Accessors(t *testing.T) {
	v := Values{"id": int64(3), "email": "a@b.co"}

	id, ok := v.Int64("id")
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)

	_, ok = v.Int64("missing")
	assert.False(t, ok)

	assert.Equal(t, "a@b.co", v.String("email"))
	assert.Equal(t, "", v.String("missing"))
}
