// Package telemetry sets up OpenTelemetry tracing and Sentry.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/feelnote-core/config"
	"github.com/d60-Lab/feelnote-core/pkg/logger"
)

// ShutdownFunc flushes and stops a telemetry backend.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// InitTracer installs a global tracer provider exporting over OTLP/HTTP.
// When tracing is disabled the global no-op provider stays in place.
func InitTracer(ctx context.Context, cfg config.TelemetryConfig) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return noopShutdown, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "feelnote-core"
	}
	res := resource.NewSchemaless(attribute.String("service.name", name))

	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	logger.Info("tracing enabled", zap.String("endpoint", cfg.OTLPEndpoint), zap.Float64("ratio", ratio))
	return tp.Shutdown, nil
}

// InitSentry configures the global Sentry hub. An empty DSN disables it.
func InitSentry(cfg config.SentryConfig) (ShutdownFunc, error) {
	if cfg.DSN == "" {
		return noopShutdown, nil
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 1
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		SampleRate:       rate,
		AttachStacktrace: true,
	}); err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	return func(context.Context) error {
		sentry.Flush(2 * time.Second)
		return nil
	}, nil
}
