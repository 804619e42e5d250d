// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package blockbuilder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/z5labs/blockbuilder/config"
	"github.com/z5labs/blockbuilder/internal/try"
	"github.com/z5labs/blockbuilder/pkg/noop"
	"github.com/z5labs/blockbuilder/pkg/otelslog"
	"github.com/z5labs/blockbuilder/pkg/slogfield"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/z5labs/blockbuilder"

// Procedure configures a Registry.
type Procedure func(*Registry)

type buildOptions struct {
	defaults   Procedure
	flags      []string
	options    map[string]any
	settings   []config.Source
	logHandler slog.Handler
}

// Option are used to configure Build.
type Option func(*buildOptions)

// Defaults registers the procedure which runs before the target procedure.
// If used multiple times, only the last procedure is kept.
func Defaults(p Procedure) Option {
	return func(bo *buildOptions) {
		bo.defaults = p
	}
}

// Flags records each name as a true value in the Registry options.
// Flags take precedence over values given with [WithOptions].
func Flags(names ...string) Option {
	return func(bo *buildOptions) {
		bo.flags = append(bo.flags, names...)
	}
}

// WithOptions merges m into the Registry options.
func WithOptions(m map[string]any) Option {
	return func(bo *buildOptions) {
		if bo.options == nil {
			bo.options = make(map[string]any, len(m))
		}
		for k, v := range m {
			bo.options[k] = v
		}
	}
}

// WithSettings seeds the settings table from the given config sources before
// either procedure runs. Nested keys are flattened into dot separated names,
// e.g. activity.window, and later sources override earlier ones.
func WithSettings(srcs ...config.Source) Option {
	return func(bo *buildOptions) {
		bo.settings = append(bo.settings, srcs...)
	}
}

// LogHandler configures where the Registry sends its debug logs.
// By default all logs are discarded. Records are correlated with the
// build span through an [otelslog.Handler], unless h already wraps one.
func LogHandler(h slog.Handler) Option {
	return func(bo *buildOptions) {
		bo.logHandler = h
	}
}

func (bo *buildOptions) registryOptions() map[string]any {
	m := make(map[string]any, len(bo.options)+len(bo.flags))
	for k, v := range bo.options {
		m[k] = v
	}
	for _, f := range bo.flags {
		m[f] = true
	}
	return m
}

// Build creates a Registry by running the default procedure, if any, and then
// the target procedure against it. Once both have run every name given to
// [Registry.Require] must have been written, otherwise a [MissingRequiredError]
// is returned. No Registry is returned alongside an error.
func Build(ctx context.Context, target Procedure, opts ...Option) (*Registry, error) {
	bo := &buildOptions{
		logHandler: noop.LogHandler{},
	}
	for _, opt := range opts {
		opt(bo)
	}

	spanCtx, span := otel.Tracer(tracerName).Start(ctx, "blockbuilder.Build")
	defer span.End()

	log := slog.New(bo.logHandler)
	if !otelslog.Correlated(bo.logHandler) {
		log = otelslog.New(bo.logHandler)
	}
	r := newRegistry(log, bo.registryOptions())

	err := r.build(spanCtx, bo.settings, bo.defaults, target)
	if err != nil {
		log.ErrorContext(spanCtx, "failed to build registry", slogfield.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	log.DebugContext(
		spanCtx,
		"built registry",
		slogfield.Strings("attributes", r.Names()),
		slogfield.Strings("required", r.Required()),
	)
	span.SetAttributes(
		attribute.Int("blockbuilder.attributes", len(r.symbols)),
		attribute.Int("blockbuilder.settings", len(r.settings)),
		attribute.StringSlice("blockbuilder.required", r.Required()),
	)
	return r, nil
}

func (r *Registry) build(ctx context.Context, srcs []config.Source, defaults, target Procedure) error {
	r.ctx = ctx
	defer func() {
		r.ctx = context.Background()
	}()

	store := settingsStore{r: r}
	for _, src := range srcs {
		err := src.Apply(store)
		if err != nil {
			return ConfigReadError{Cause: err}
		}
	}

	err := r.run(ctx, "default", defaults)
	if err != nil {
		return err
	}
	err = r.run(ctx, "target", target)
	if err != nil {
		return err
	}

	for _, name := range r.requiredOrder {
		a, ok := r.symbols[name]
		if ok && !a.IsEmpty() {
			continue
		}
		return MissingRequiredError{Name: name}
	}
	return nil
}

func (r *Registry) run(ctx context.Context, which string, p Procedure) error {
	if p == nil {
		return nil
	}

	r.log.DebugContext(ctx, "running configuration procedure", slogfield.Procedure(which))
	err := try.Do(func() {
		p(r)
	})
	if err != nil {
		return ProcedureError{Procedure: which, Cause: err}
	}
	return nil
}

// MissingRequiredError is returned by Build when a name passed to
// [Registry.Require] was never written by either procedure.
type MissingRequiredError struct {
	Name string
}

// Error implements the [builtin.error] interface.
func (e MissingRequiredError) Error() string {
	return fmt.Sprintf("required attribute is not defined: %s", e.Name)
}

// ProcedureError is returned by Build when a configuration procedure panics.
type ProcedureError struct {
	// Procedure is either "default" or "target".
	Procedure string
	Cause     error
}

// Error implements the [builtin.error] interface.
func (e ProcedureError) Error() string {
	return fmt.Sprintf("%s configuration procedure failed: %s", e.Procedure, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ProcedureError) Unwrap() error {
	return e.Cause
}

// ConfigReadError
type ConfigReadError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ConfigReadError) Error() string {
	return fmt.Sprintf("failed to read config source(s): %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConfigReadError) Unwrap() error {
	return e.Cause
}

// ConfigUnmarshalError
type ConfigUnmarshalError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ConfigUnmarshalError) Error() string {
	return fmt.Sprintf("failed to unmarshal settings into custom type: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConfigUnmarshalError) Unwrap() error {
	return e.Cause
}
