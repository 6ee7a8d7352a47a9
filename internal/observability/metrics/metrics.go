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

// Metrics exposes ledger and forecast instruments.
type Metrics struct {
	salesRecorded   metric.Int64Counter
	salesRejected   metric.Int64Counter
	reconciliations metric.Int64Counter
	snapshots       metric.Int64Counter
	forecasts       metric.Int64Counter
	imports         metric.Int64Counter
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
			// A CLI run is short; shutdown flushes whatever the reader has not pushed yet.
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Debug("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Debug("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "stockroom"
	}
	meter := provider.Meter(name)

	salesRecorded, err := meter.Int64Counter("stockroom_sales_recorded_total")
	if err != nil {
		return nil, err
	}
	salesRejected, err := meter.Int64Counter("stockroom_sales_rejected_total")
	if err != nil {
		return nil, err
	}
	reconciliations, err := meter.Int64Counter("stockroom_reconciliations_total")
	if err != nil {
		return nil, err
	}
	snapshots, err := meter.Int64Counter("stockroom_snapshots_appended_total")
	if err != nil {
		return nil, err
	}
	forecasts, err := meter.Int64Counter("stockroom_forecasts_total")
	if err != nil {
		return nil, err
	}
	imports, err := meter.Int64Counter("stockroom_import_rows_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		salesRecorded:   salesRecorded,
		salesRejected:   salesRejected,
		reconciliations: reconciliations,
		snapshots:       snapshots,
		forecasts:       forecasts,
		imports:         imports,
	}, nil
}

// RecordSale increments accepted sale counts.
func (m *Metrics) RecordSale(ctx context.Context) {
	if m == nil {
		return
	}
	m.salesRecorded.Add(ctx, 1)
}

// RecordSaleRejected increments rejected sale counts by reason.
func (m *Metrics) RecordSaleRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.salesRejected.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordReconciliation counts a reconciler pass and the revisions it appended.
func (m *Metrics) RecordReconciliation(ctx context.Context, sourceType string, appended int) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source_type", strings.TrimSpace(sourceType)))
	m.reconciliations.Add(ctx, 1, metric.WithAttributes(attrs...))
	if appended > 0 {
		m.snapshots.Add(ctx, int64(appended), metric.WithAttributes(attrs...))
	}
}

// RecordForecast increments forecast counts by outcome.
func (m *Metrics) RecordForecast(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.forecasts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordImportRow increments imported row counts by status.
func (m *Metrics) RecordImportRow(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.imports.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// Product ids are never labels.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"reason":      {},
	"source_type": {},
	"status":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
