// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package blockbuilder

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/z5labs/blockbuilder/config"
	"github.com/z5labs/blockbuilder/config/key"
	"github.com/z5labs/blockbuilder/pkg/slogfield"
)

// assignSuffix marks setter style names, e.g. "logger=" resolves to "logger".
const assignSuffix = "="

// Registry holds the attributes, settings and required names for a single
// configuration session. A Registry is not safe for concurrent use.
type Registry struct {
	log *slog.Logger
	// ctx is the build context while the procedures run.
	ctx context.Context

	options  map[string]any
	settings map[string]any
	symbols  map[string]*Attribute

	required      map[string]struct{}
	requiredOrder []string
}

func newRegistry(log *slog.Logger, options map[string]any) *Registry {
	return &Registry{
		log:      log,
		ctx:      context.Background(),
		options:  options,
		settings: make(map[string]any),
		symbols:  make(map[string]*Attribute),
		required: make(map[string]struct{}),
	}
}

func canonical(name string) string {
	return strings.TrimSuffix(name, assignSuffix)
}

// Set stores value in the settings table, replacing any previous value.
func (r *Registry) Set(name string, value any) {
	r.settings[name] = value
}

// Setting returns the value stored in the settings table under name.
func (r *Registry) Setting(name string) (any, bool) {
	v, ok := r.settings[name]
	return v, ok
}

// Require marks each name as required. Requiring a name more than once has no
// additional effect.
func (r *Registry) Require(names ...string) {
	for _, name := range names {
		name = canonical(name)
		if _, ok := r.required[name]; ok {
			continue
		}
		r.required[name] = struct{}{}
		r.requiredOrder = append(r.requiredOrder, name)
	}
}

// Required returns the required names in the order they were first declared.
func (r *Registry) Required() []string {
	return slices.Clone(r.requiredOrder)
}

// IsDefined reports whether an attribute exists for name.
//
// Any reference creates the attribute, including a read through [Registry.Attr]
// or [Registry.Get], so IsDefined also reports true for names which were only read.
func (r *Registry) IsDefined(name string) bool {
	_, ok := r.symbols[canonical(name)]
	return ok
}

// Names returns the names of all attributes, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.symbols))
}

// Options returns a copy of the options given to Build.
func (r *Registry) Options() map[string]any {
	return maps.Clone(r.options)
}

// Flag reports whether name was set to true in the options given to Build.
func (r *Registry) Flag(name string) bool {
	v, ok := r.options[name].(bool)
	return ok && v
}

// Resolve is the single entry point for reading and writing names.
//
// A trailing "=" is stripped from name before the attribute is looked up.
// With no args and no callback, a setting stored under name is returned if
// one exists, otherwise the attribute for name is returned, creating it if
// needed. With args, a callback or both, the attribute's args are replaced,
// its callback is replaced when cb is non-nil, and the attribute is returned.
func (r *Registry) Resolve(name string, args []any, cb Callback) any {
	read := len(args) == 0 && cb == nil
	if read {
		if v, ok := r.settings[name]; ok {
			return v
		}
	}

	a := r.lookup(canonical(name))
	if read {
		return a
	}

	a.args = slices.Clone(args)
	if cb != nil {
		a.callback = cb
	}
	r.log.DebugContext(
		r.ctx,
		"attribute written",
		slogfield.Attribute(a.name),
		slogfield.Int("args", len(a.args)),
		slogfield.Bool("callback", a.callback != nil),
	)
	return a
}

func (r *Registry) lookup(name string) *Attribute {
	a, ok := r.symbols[name]
	if ok {
		return a
	}

	a = &Attribute{
		name:     name,
		registry: r,
	}
	r.symbols[name] = a
	r.log.DebugContext(r.ctx, "attribute created", slogfield.Attribute(name))
	return a
}

// Get reads name, preferring the settings table. The result is either the
// setting value or the *Attribute for name.
func (r *Registry) Get(name string) any {
	return r.Resolve(name, nil, nil)
}

// Attr returns the attribute for name, creating an empty one if needed.
// Unlike [Registry.Get], the settings table is not consulted.
func (r *Registry) Attr(name string) *Attribute {
	return r.lookup(canonical(name))
}

// Define replaces the args of the attribute for name and returns it.
// With no args Define is a read, the same as [Registry.Attr].
func (r *Registry) Define(name string, args ...any) *Attribute {
	return r.write(name, args, nil)
}

// On sets the callback, and optionally the args, of the attribute for name.
func (r *Registry) On(name string, cb Callback, args ...any) *Attribute {
	return r.write(name, args, cb)
}

func (r *Registry) write(name string, args []any, cb Callback) *Attribute {
	if len(args) == 0 && cb == nil {
		return r.Attr(name)
	}
	return r.Resolve(name, args, cb).(*Attribute)
}

// Call invokes the callback of the attribute for name. It returns nil,
// without failing, if no callback was ever set.
func (r *Registry) Call(name string, args ...any) any {
	return r.Attr(name).Invoke(args...)
}

// Decode copies the settings table into v using the same rules as
// [config.Manager.Unmarshal]. Dot separated names become nested keys, so
// a setting named "activity.window" fills the Window field of an Activity
// struct field tagged `config:"activity"`.
func (r *Registry) Decode(v any) error {
	m, err := config.Read(config.SourceFunc(r.applySettings))
	if err != nil {
		return ConfigUnmarshalError{Cause: err}
	}

	err = m.Unmarshal(v)
	if err != nil {
		return ConfigUnmarshalError{Cause: err}
	}
	return nil
}

func (r *Registry) applySettings(store config.Store) error {
	for _, name := range slices.Sorted(maps.Keys(r.settings)) {
		err := store.Set(key.Split(name), r.settings[name])
		if err != nil {
			return err
		}
	}
	return nil
}

type settingsStore struct {
	r *Registry
}

func (s settingsStore) Set(k key.Keyer, v any) error {
	s.r.settings[k.Key()] = v
	return nil
}
