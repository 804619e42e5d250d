// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package blockbuilder

import (
	"fmt"
	"slices"
)

// Callback is the function stored on an Attribute.
type Callback func(args ...any) any

// Attribute is a named slot holding positional args and, optionally, a Callback.
// Attributes are only created by a Registry.
type Attribute struct {
	name     string
	args     []any
	callback Callback
	registry *Registry
}

// Name returns the name the attribute was created under.
func (a *Attribute) Name() string {
	return a.name
}

// Registry returns the Registry which created the attribute.
func (a *Attribute) Registry() *Registry {
	return a.registry
}

// Invoke calls the callback with args and returns its result.
// Without a callback Invoke does nothing and returns nil.
func (a *Attribute) Invoke(args ...any) any {
	if a.callback == nil {
		return nil
	}
	return a.callback(args...)
}

// HasCallback reports whether a callback has been set.
func (a *Attribute) HasCallback() bool {
	return a.callback != nil
}

// IsEmpty reports whether the attribute has neither args nor a callback.
func (a *Attribute) IsEmpty() bool {
	return len(a.args) == 0 && a.callback == nil
}

// Value returns the first arg, or nil if there are none.
func (a *Attribute) Value() any {
	if len(a.args) == 0 {
		return nil
	}
	return a.args[0]
}

// Values returns a copy of all args.
func (a *Attribute) Values() []any {
	return slices.Clone(a.args)
}

// String implements the [fmt.Stringer] interface by formatting [Attribute.Value].
func (a *Attribute) String() string {
	v := a.Value()
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
