// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"maps"
	"slices"

	"github.com/z5labs/blockbuilder/config/key"
)

// Map is an ordinary map[string]any but implements the Source interface.
// Nested maps, either map[string]any or Map, become nested keys.
type Map map[string]any

// Apply implements the Source interface. Keys are set in sorted order at
// every level so a conflict between two keys is always reported the same way.
func (m Map) Apply(store Store) error {
	return walkMap(m, store, nil)
}

func walkMap(m map[string]any, store Store, prefix key.Chain) error {
	for _, name := range slices.Sorted(maps.Keys(m)) {
		chain := prefix.Append(key.Name(name))

		var err error
		switch x := m[name].(type) {
		case map[string]any:
			err = walkMap(x, store, chain)
		case Map:
			err = walkMap(x, store, chain)
		default:
			err = store.Set(chain, x)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
