// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"

	"github.com/z5labs/blockbuilder/config/key"
)

// UnknownKeyerError
type UnknownKeyerError struct {
	key key.Keyer
}

// Error implements the error interface.
func (e UnknownKeyerError) Error() string {
	return fmt.Sprintf("config source tried setting config value with unknown key.Keyer: %s", e.key.Key())
}

// EmptyKeyChainError
type EmptyKeyChainError struct {
	Value any
}

// Error implements the error interface.
func (e EmptyKeyChainError) Error() string {
	return fmt.Sprintf("attempted to set value to an empty key chain: %v", e.Value)
}

// UnexpectedKeyValueTypeError occurs when a nested key is set below a
// prefix which already holds a plain value, e.g. setting activity.window
// after activity was set to a string.
type UnexpectedKeyValueTypeError struct {
	// Key is the full dotted key being set.
	Key string

	// Conflict is the prefix of Key which holds the plain value.
	Conflict string

	ExpectedType string
}

// Error implements the error interface.
func (e UnexpectedKeyValueTypeError) Error() string {
	return fmt.Sprintf("can not set %s: expected %s to be a %s", e.Key, e.Conflict, e.ExpectedType)
}

// inMemoryStore nests every key.Chain into maps so the result can be
// decoded by mapstructure. A key.Name is always a single level, even if
// it contains the key separator.
type inMemoryStore map[string]any

func (m inMemoryStore) Set(k key.Keyer, v any) error {
	switch x := k.(type) {
	case key.Name:
		m[string(x)] = v
		return nil
	case key.Chain:
		return m.setChain(x, v)
	default:
		return UnknownKeyerError{key: k}
	}
}

func (m inMemoryStore) setChain(chain key.Chain, v any) error {
	if len(chain) == 0 {
		return EmptyKeyChainError{Value: v}
	}

	parent := map[string]any(m)
	last := len(chain) - 1
	for i, k := range chain[:last] {
		next, ok := parent[k.Key()]
		if !ok {
			sub := make(map[string]any)
			parent[k.Key()] = sub
			parent = sub
			continue
		}

		sub, ok := next.(map[string]any)
		if !ok {
			return UnexpectedKeyValueTypeError{
				Key:          chain.Key(),
				Conflict:     chain[:i+1].Key(),
				ExpectedType: "map[string]any",
			}
		}
		parent = sub
	}

	parent[chain[last].Key()] = v
	return nil
}
