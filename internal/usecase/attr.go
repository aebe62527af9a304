// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

// Package usecase provides the attribute coercion layer and the executor
// that runs domain use cases, producing exactly one outcome per call.
package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Attr declares one input attribute of a use case: its name, a coercion
// function, and zero or more validators. An Attr list is built once per
// use case and never mutated afterwards.
//
// Coercion always runs before validation; a value that fails validation
// never reaches domain logic.
type Attr struct {
	Name       string
	Coerce     Coercer
	Validators []Validator
}

// Coercer normalizes a raw input value. Coercion is idempotent: a value
// that is already the target type passes through unchanged.
type Coercer func(raw any) any

// Validator checks a coerced value. It returns an empty string when the
// value is valid, or a message otherwise.
type Validator func(value any) string

// Errors accumulates validation messages keyed by attribute name. A single
// execution reports failures on every offending attribute, never
// short-circuiting after the first.
type Errors map[string][]string

// Add appends a message for the named attribute.
func (e Errors) Add(name, message string) {
	e[name] = append(e[name], message)
}

// coerce applies the attribute's coercer, defaulting to identity.
func (a Attr) coerce(raw any) any {
	if a.Coerce == nil {
		return raw
	}
	return a.Coerce(raw)
}

// validate runs every validator against the coerced value, accumulating
// all messages.
func (a Attr) validate(value any) []string {
	var msgs []string
	for _, v := range a.Validators {
		if msg := v(value); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// String coerces any input to a trimmed string. Nil becomes the empty
// string; blank input stays blank for Presence to reject.
func String(raw any) any {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Email coerces input the way the sign-in form does: trimmed and
// lowercased.
func Email(raw any) any {
	s, _ := String(raw).(string)
	return strings.ToLower(s)
}

// integerPattern matches an optionally signed run of digits with no
// fractional part. "1.0" does not match: integer attributes reject
// non-integer numerics.
var integerPattern = regexp.MustCompile(`^[+-]?\d+$`)

// Int coerces numeric input to int64. Integers and integer-formatted
// strings convert; blank strings become nil (treated as absent); anything
// else passes through unconverted for the Integer validator to reject.
func Int(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if !integerPattern.MatchString(s) {
			return raw
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return raw
		}
		return n
	default:
		// Floats included: 1.0 is not an integer.
		return raw
	}
}

// Presence validates that a string value is non-blank.
func Presence() Validator {
	return func(value any) string {
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return "can't be blank"
		}
		return ""
	}
}

// Integer validates that coercion produced an int64. Absent, blank,
// non-numeric, and non-integer inputs all fail here.
func Integer() Validator {
	return func(value any) string {
		if _, ok := value.(int64); !ok {
			return "is not an integer"
		}
		return ""
	}
}

// emailPattern is a pragmatic mailbox check: one @, no spaces, a dot in
// the domain part.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// EmailFormat validates that a string looks like an email address.
func EmailFormat() Validator {
	return func(value any) string {
		s, ok := value.(string)
		if !ok || !emailPattern.MatchString(s) {
			return "is invalid"
		}
		return ""
	}
}
