package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	readingsIngested  metric.Int64Counter
	readingsSkipped   metric.Int64Counter
	schemaMismatches  metric.Int64Counter
	coercionFailures  metric.Int64Counter
	negativeDeltas    metric.Int64Counter
	costReportsServed metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "voltgrid"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	var err error

	if m.readingsIngested, err = meter.Int64Counter("telemetry_readings_ingested_total"); err != nil {
		return nil, err
	}
	if m.readingsSkipped, err = meter.Int64Counter("telemetry_readings_skipped_total"); err != nil {
		return nil, err
	}
	if m.schemaMismatches, err = meter.Int64Counter("telemetry_schema_mismatch_total"); err != nil {
		return nil, err
	}
	if m.coercionFailures, err = meter.Int64Counter("telemetry_value_coercion_failure_total"); err != nil {
		return nil, err
	}
	if m.negativeDeltas, err = meter.Int64Counter("costing_negative_energy_delta_total"); err != nil {
		return nil, err
	}
	if m.costReportsServed, err = meter.Int64Counter("costing_reports_served_total"); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordIngest counts an inserted reading for the given device category.
func (m *Metrics) RecordIngest(ctx context.Context, category string) {
	if m == nil || m.readingsIngested == nil {
		return
	}
	m.readingsIngested.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

// RecordSkip counts a deduplicated (conflict no-op) ingestion attempt.
func (m *Metrics) RecordSkip(ctx context.Context, category string) {
	if m == nil || m.readingsSkipped == nil {
		return
	}
	m.readingsSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

// RecordSchemaMismatch counts a payload rejected by the normalizer.
func (m *Metrics) RecordSchemaMismatch(ctx context.Context, category string) {
	if m == nil || m.schemaMismatches == nil {
		return
	}
	m.schemaMismatches.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

// RecordCoercionFailure counts a single dropped field.
func (m *Metrics) RecordCoercionFailure(ctx context.Context, field string) {
	if m == nil || m.coercionFailures == nil {
		return
	}
	m.coercionFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
}

// RecordNegativeDelta counts a discarded energy delta (counter reset/rollover).
func (m *Metrics) RecordNegativeDelta(ctx context.Context, equipmentID string) {
	if m == nil || m.negativeDeltas == nil {
		return
	}
	m.negativeDeltas.Add(ctx, 1, metric.WithAttributes(attribute.String("equipment_id", equipmentID)))
}

// RecordCostReport counts a served cost report.
func (m *Metrics) RecordCostReport(ctx context.Context, concessionaire string) {
	if m == nil || m.costReportsServed == nil {
		return
	}
	m.costReportsServed.Add(ctx, 1, metric.WithAttributes(attribute.String("concessionaire", concessionaire)))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp metric protocol %q", protocol)
	}
}
