// Package telemetry sets up OpenTelemetry tracing for the runner.
package telemetry

import (
	"context"
	"errors"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Cyclone1070/turnkit/internal/config"
)

// ServiceName is reported on every span.
const ServiceName = "turnkit"

// Provider owns the tracer provider and its exporter.
type Provider struct {
	tracerProvider trace.TracerProvider
	shutdownFuncs  []func(context.Context) error
}

// Setup builds a Provider from cfg. With tracing disabled it is a no-op;
// otherwise spans are written to out (stderr when nil) as JSON.
func Setup(cfg config.TracingConfig, version string, out io.Writer) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracerProvider: noop.NewTracerProvider()}, nil
	}
	if out == nil {
		out = os.Stderr
	}

	opts := []stdouttrace.Option{stdouttrace.WithWriter(out)}
	if cfg.Pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Provider{
		tracerProvider: tp,
		shutdownFuncs:  []func(context.Context) error{tp.Shutdown},
	}, nil
}

// Tracer returns a named tracer.
func (p *Provider) Tracer(name string) trace.Tracer {
	return p.tracerProvider.Tracer(name)
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
