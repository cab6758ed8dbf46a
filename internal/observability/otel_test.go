package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/tbourn/go-receipt-bot/internal/config"
)

func TestSetupOTel_DisabledIsNoop(t *testing.T) {
	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: false})
	if err != nil {
		t.Fatalf("SetupOTel: %v", err)
	}
	if shutdown != nil {
		t.Fatalf("disabled tracing should return a nil shutdown")
	}
}

func TestSetupOTel_ExporterFailure(t *testing.T) {
	orig := newOTLPExporterFn
	t.Cleanup(func() { newOTLPExporterFn = orig })

	boom := errors.New("dial failed")
	newOTLPExporterFn = func(ctx context.Context, cfg config.OTELConfig) (*otlptrace.Exporter, error) {
		return nil, boom
	}

	_, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: true})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped exporter error", err)
	}
}

func TestSetupOTel_ResourceFailure(t *testing.T) {
	origExp := newOTLPExporterFn
	origRes := newServiceResourceFn
	t.Cleanup(func() {
		newOTLPExporterFn = origExp
		newServiceResourceFn = origRes
	})

	newOTLPExporterFn = func(ctx context.Context, cfg config.OTELConfig) (*otlptrace.Exporter, error) {
		return &otlptrace.Exporter{}, nil
	}
	boom := errors.New("resource failed")
	newServiceResourceFn = func(ctx context.Context, serviceName string) (*resource.Resource, error) {
		return nil, boom
	}

	_, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: true})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped resource error", err)
	}
}
