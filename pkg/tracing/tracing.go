package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config selects the span exporter
type Config struct {
	Stdout bool
	Writer io.Writer // defaults to os.Stderr
}

// Init installs a global tracer provider. With Stdout unset the global
// no-op provider is left in place. The returned func flushes and stops
// the provider.
func Init(cfg Config) (func(context.Context) error, error) {
	if !cfg.Stdout {
		return func(context.Context) error { return nil }, nil
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create stdout trace exporter: %w", err)
	}

	// one-shot job: export synchronously so nothing is lost on exit
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
