// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package slogfield provides the [slog.Attr] constructors used throughout blockbuilder.
package slogfield

import (
	"log/slog"
	"time"
)

// Bool returns an slog.Attr for a bool.
func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

// Duration returns an slog.Attr for a time.Duration.
func Duration(key string, d time.Duration) slog.Attr {
	return slog.Duration(key, d)
}

// Error returns an slog.Attr for a error.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// String returns an slog.Attr for a string.
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Strings returns an slog.Attr for a slice of strings.
func Strings(key string, values []string) slog.Attr {
	return slog.Any(key, values)
}

// Int returns an slog.Attr for a int.
func Int(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Attribute returns the slog.Attr used to identify a registry attribute by name.
func Attribute(name string) slog.Attr {
	return slog.String("attribute", name)
}

// Procedure returns the slog.Attr used to identify which configuration
// procedure, default or target, a record refers to.
func Procedure(which string) slog.Attr {
	return slog.String("procedure", which)
}
