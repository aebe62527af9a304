// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

// Package errutil helps log and assert coded errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code, and context.
// For standard errors, it logs the error string.
func LogError(logger *slog.Logger, msg string, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(msg, attrs(err)...)
}

// LogWarn logs an error at warning level with the same extraction rules
// as LogError. Used for degraded-but-continuing paths.
func LogWarn(logger *slog.Logger, msg string, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn(msg, attrs(err)...)
}

func attrs(err error) []any {
	if oopsErr, ok := oops.AsOops(err); ok {
		out := []any{"error", oopsErr.Error()}
		if code := oopsErr.Code(); code != "" {
			out = append(out, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			out = append(out, "context", ctx)
		}
		return out
	}
	return []any{"error", err}
}
