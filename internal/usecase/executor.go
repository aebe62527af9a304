// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package usecase

import (
	"context"

	"github.com/donelist/donelist/internal/outcome"
)

// Values holds the coerced attributes handed to a use case's Execute.
type Values map[string]any

// Int64 returns the named attribute as int64. ok is false when the
// attribute is absent or was not coerced to an integer.
func (v Values) Int64(name string) (int64, bool) {
	n, ok := v[name].(int64)
	return n, ok
}

// String returns the named attribute as a string, or "" when absent.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// UseCase is one named unit of domain business logic with declared input
// attributes. Use cases are stateless across invocations; each call is
// independent.
type UseCase interface {
	// Name identifies the use case in logs and metrics.
	Name() string

	// Attrs declares the input attributes, coercers, and validators.
	Attrs() []Attr

	// Execute runs the domain logic with coerced attributes and decides
	// success or failure by domain rules. The error return is reserved
	// for infrastructure faults; expected rejections travel in the
	// Outcome.
	Execute(ctx context.Context, in Values) (outcome.Outcome, error)
}

// Execute runs one use case against raw input.
//
// Every declared attribute is coerced and validated first; if any fails,
// the result is Failure(invalid_attributes) carrying the per-attribute
// error map under "errors" and domain logic is never invoked. Otherwise
// the use case's Execute decides the outcome. An unexpected runtime error
// propagates as an error, never as a Failure outcome.
func Execute(ctx context.Context, uc UseCase, raw map[string]any) (outcome.Outcome, error) {
	in := make(Values, len(uc.Attrs()))
	errs := make(Errors)

	for _, attr := range uc.Attrs() {
		value := attr.coerce(raw[attr.Name])
		if msgs := attr.validate(value); len(msgs) > 0 {
			errs[attr.Name] = msgs
		}
		in[attr.Name] = value
	}

	if len(errs) > 0 {
		return outcome.FailWith(outcome.TagInvalidAttributes, map[string]any{"errors": errs}), nil
	}

	return uc.Execute(ctx, in)
}
