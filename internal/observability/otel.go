// Package observability wires OpenTelemetry tracing: an OTLP/gRPC exporter,
// a service resource, a parent-based ratio sampler, and W3C context
// propagation. Everything is controlled by config.OTELConfig; when tracing is
// disabled SetupOTel is a no-op that returns a nil shutdown.
package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"google.golang.org/grpc/credentials"

	"github.com/tbourn/go-receipt-bot/internal/config"
)

// Seams for tests.
var (
	newOTLPExporterFn = func(ctx context.Context, cfg config.OTELConfig) (*otlptrace.Exporter, error) {
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithTimeout(5 * time.Second),
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		} else {
			creds := credentials.NewClientTLSFromCert(nil, "")
			opts = append(opts, otlptracegrpc.WithTLSCredentials(creds))
		}
		return otlptracegrpc.New(ctx, opts...)
	}

	newServiceResourceFn = func(ctx context.Context, serviceName string) (*resource.Resource, error) {
		return resource.New(ctx,
			resource.WithAttributes(semconv.ServiceName(serviceName)),
		)
	}
)

// SetupOTel configures the global tracer provider and propagators. It returns
// a shutdown function that flushes spans; callers should defer it. When
// cfg.Enabled is false it returns (nil, nil).
func SetupOTel(ctx context.Context, cfg config.OTELConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	exporter, err := newOTLPExporterFn(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := newServiceResourceFn(ctx, cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("create service resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Float64("sample_ratio", cfg.SampleRatio).
		Msg("tracing enabled")

	return tp.Shutdown, nil
}
