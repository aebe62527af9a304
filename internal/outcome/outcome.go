// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

// Package outcome provides the tagged result type every use case returns
// and the dispatcher callers use to consume it exhaustively.
package outcome

// Tag is the symbolic type of an Outcome. Tags are part of a use case's
// public contract: callers branch on them.
type Tag string

// Tags shared across use cases.
const (
	TagInvalidAttributes Tag = "invalid_attributes"
)

// Outcome is the immutable result of one use-case invocation. It is exactly
// one of success or failure, carries a Tag, and a data map keyed by name.
type Outcome struct {
	success bool
	tag     Tag
	data    map[string]any
}

// Succeed creates a success Outcome with no explicit data. The data map
// carries {<tag>: true} so callers can read the tag as a keyed value.
func Succeed(tag Tag) Outcome {
	return SucceedWith(tag, nil)
}

// SucceedWith creates a success Outcome carrying the given data.
func SucceedWith(tag Tag, data map[string]any) Outcome {
	return Outcome{success: true, tag: tag, data: defaultData(tag, data)}
}

// Fail creates a failure Outcome with no explicit data. The data map
// carries {<tag>: true}.
func Fail(tag Tag) Outcome {
	return FailWith(tag, nil)
}

// FailWith creates a failure Outcome carrying the given data.
func FailWith(tag Tag, data map[string]any) Outcome {
	return Outcome{success: false, tag: tag, data: defaultData(tag, data)}
}

func defaultData(tag Tag, data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{string(tag): true}
	}
	return data
}

// IsSuccess reports whether the outcome is a success.
func (o Outcome) IsSuccess() bool { return o.success }

// IsFailure reports whether the outcome is a failure.
func (o Outcome) IsFailure() bool { return !o.success }

// Tag returns the symbolic type of the outcome.
func (o Outcome) Tag() Tag { return o.tag }

// Get returns the data value stored under key, or nil.
func (o Outcome) Get(key string) any { return o.data[key] }

// Data returns a copy of the outcome's data map. The outcome itself is
// never mutated after construction.
func (o Outcome) Data() map[string]any {
	out := make(map[string]any, len(o.data))
	for k, v := range o.data {
		out[k] = v
	}
	return out
}
