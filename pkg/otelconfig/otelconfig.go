// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelconfig initializes the global OpenTelemetry tracer provider.
package otelconfig

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Initializer creates a tracer provider.
type Initializer interface {
	Init() (trace.TracerProvider, error)
}

// LocalConfig exports spans as JSON to Out.
type LocalConfig struct {
	ServiceName string `config:"service_name"`
	PrettyPrint bool   `config:"pretty_print"`

	Out io.Writer
}

// LocalOption
type LocalOption func(*LocalConfig)

// ServiceName sets the service.name resource attribute.
func ServiceName(name string) LocalOption {
	return func(cfg *LocalConfig) {
		cfg.ServiceName = name
	}
}

// Writer sets where spans are written. Defaults to os.Stdout.
func Writer(w io.Writer) LocalOption {
	return func(cfg *LocalConfig) {
		cfg.Out = w
	}
}

// PrettyPrint indents the exported spans.
func PrettyPrint() LocalOption {
	return func(cfg *LocalConfig) {
		cfg.PrettyPrint = true
	}
}

// Local
func Local(opts ...LocalOption) Initializer {
	cfg := LocalConfig{
		Out: os.Stdout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Init implements the Initializer interface.
func (cfg LocalConfig) Init() (trace.TracerProvider, error) {
	exportOpts := []stdouttrace.Option{
		stdouttrace.WithWriter(cfg.Out),
	}
	if cfg.PrettyPrint {
		exportOpts = append(exportOpts, stdouttrace.WithPrettyPrint())
	}

	exporter, err := stdouttrace.New(exportOpts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	return tp, nil
}

// Manage installs the tracer provider created by initer as the global one.
// The returned func shuts it down, if it supports being shut down, and
// restores the previous global provider.
func Manage(initer Initializer) (func(context.Context) error, error) {
	prev := otel.GetTracerProvider()

	tp, err := initer.Init()
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)
	// need to set this so traces can propagate
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) error {
		defer otel.SetTracerProvider(prev)

		stp, ok := tp.(interface {
			Shutdown(context.Context) error
		})
		if !ok {
			return nil
		}
		return stp.Shutdown(ctx)
	}, nil
}
