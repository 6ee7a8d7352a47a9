package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("product_id", "10001"),
		attribute.String("reason", "insufficient_stock"),
		attribute.String("source_type", "sale"),
	)
	require.Len(t, attrs, 2)
	for _, attr := range attrs {
		assert.NotEqual(t, attribute.Key("product_id"), attr.Key)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordSale(ctx)
	m.RecordSaleRejected(ctx, "insufficient_stock")
	m.RecordReconciliation(ctx, "sale", 2)
	m.RecordForecast(ctx, "ok")
	m.RecordImportRow(ctx, "imported")
}

func TestDisabledProviderIsNoop(t *testing.T) {
	provider, err := NewProvider(nil, Config{Enabled: false}, nil)
	require.NoError(t, err)

	m, err := New(Config{}, provider)
	require.NoError(t, err)
	m.RecordSale(context.Background())
}

func TestCountersReachReader(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := New(Config{ServiceName: "stockroom-test"}, provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordSale(ctx)
	m.RecordSale(ctx)
	m.RecordReconciliation(ctx, "sale", 3)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, metric := range scope.Metrics {
			sum, ok := metric.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, point := range sum.DataPoints {
				totals[metric.Name] += point.Value
			}
		}
	}

	assert.Equal(t, int64(2), totals["stockroom_sales_recorded_total"])
	assert.Equal(t, int64(1), totals["stockroom_reconciliations_total"])
	assert.Equal(t, int64(3), totals["stockroom_snapshots_appended_total"])
}
