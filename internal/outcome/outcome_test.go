// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package outcome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSucceed_DefaultData(t *testing.T) {
	o := Succeed("todo_completed")

	assert.True(t, o.IsSuccess())
	assert.False(t, o.IsFailure())
	assert.Equal(t, Tag("todo_completed"), o.Tag())
	assert.Equal(t, true, o.Get("todo_completed"), "tag should be readable as a keyed value")
}

func TestSucceedWith_ExplicitData(t *testing.T) {
	o := SucceedWith("user_found", map[string]any{"user": "someone"})

	assert.True(t, o.IsSuccess())
	assert.Equal(t, "someone", o.Get("user"))
	assert.Nil(t, o.Get("user_found"), "explicit data replaces the default map entirely")
}

func TestFail_DefaultData(t *testing.T) {
	o := Fail("user_not_found")

	assert.True(t, o.IsFailure())
	assert.False(t, o.IsSuccess())
	assert.Equal(t, Tag("user_not_found"), o.Tag())
	assert.Equal(t, true, o.Get("user_not_found"))
}

func TestFailWith_ExplicitData(t *testing.T) {
	errs := map[string][]string{"description": {"can't be blank"}}
	o := FailWith(TagInvalidAttributes, map[string]any{"errors": errs})

	assert.True(t, o.IsFailure())
	assert.Equal(t, TagInvalidAttributes, o.Tag())
	assert.Equal(t, errs, o.Get("errors"))
}

func TestOutcome_Get_MissingKey(t *testing.T) {
	o := Succeed("todo_created")
	assert.Nil(t, o.Get("no_such_key"))
}

func TestOutcome_Data_ReturnsCopy(t *testing.T) {
	o := SucceedWith("todo_found", map[string]any{"todo": 42})

	data := o.Data()
	require.Equal(t, 42, data["todo"])

	data["todo"] = 99
	assert.Equal(t, 42, o.Get("todo"), "mutating the returned map must not affect the outcome")
}

func TestOutcome_ZeroValue(t *testing.T) {
	var o Outcome
	assert.True(t, o.IsFailure(), "zero value is a failure")
	assert.Equal(t, Tag(""), o.Tag())
	assert.Nil(t, o.Get("anything"))
}
