// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"os"
	"strings"

	"github.com/z5labs/blockbuilder/config/key"
)

// NestingSeparator splits an environment variable name into nested keys.
const NestingSeparator = "__"

// Env represents a Source where its underlying values
// are extracted from environment variables.
type Env struct {
	prefix  string
	environ func() []string
}

// FromEnv returns a Source which will apply its config from the
// environment variables, available to the current process, whose
// names start with prefix. The prefix is removed, the rest of the
// name is lower cased and split on [NestingSeparator], so with the
// prefix "APP_" the variable APP_ACTIVITY__WINDOW sets activity.window.
func FromEnv(prefix string) Env {
	return Env{
		prefix:  prefix,
		environ: os.Environ,
	}
}

// Apply implements the Source interface.
func (src Env) Apply(store Store) error {
	for _, pair := range src.environ() {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, ok := strings.CutPrefix(k, src.prefix)
		if !ok || name == "" {
			continue
		}

		parts := strings.Split(strings.ToLower(name), NestingSeparator)
		chain := make(key.Chain, len(parts))
		for i, p := range parts {
			chain[i] = key.Name(p)
		}

		err := store.Set(chain, v)
		if err != nil {
			return err
		}
	}
	return nil
}
