package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("scope", "scope_1"),
		attribute.String("stakeholder_id", "456"),
		attribute.String("action", "created"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("scope"), attrs[0].Key)
	assert.Equal(t, attribute.Key("action"), attrs[1].Key)
}

func TestMetricsAreNilSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordWrite(ctx, "scope_1", "created")
		m.RecordReportBuilt(ctx, "all")
		m.RecordReportCacheHit(ctx)
		m.RecordEventFailed(ctx, "emission.created")
		m.RecordEmissionDelta(ctx, "scope_3", 12.5)
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "carbon-test"}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordWrite(context.Background(), "scope_2", "updated")
	})
}

func TestEmissionDeltaTracksNetStoredKg(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := New(Config{}, provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordEmissionDelta(ctx, "scope_1", 268)
	m.RecordEmissionDelta(ctx, "scope_1", -68)
	m.RecordEmissionDelta(ctx, "scope_2", 624)
	m.RecordWrite(ctx, "scope_1", "created")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	byScope := map[string]float64{}
	var writes int64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			switch md.Name {
			case "carbon_emissions_stored_kg":
				sum, ok := md.Data.(metricdata.Sum[float64])
				require.True(t, ok)
				assert.False(t, sum.IsMonotonic)
				for _, dp := range sum.DataPoints {
					v, _ := dp.Attributes.Value("scope")
					byScope[v.AsString()] += dp.Value
				}
			case "carbon_records_written_total":
				sum, ok := md.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					writes += dp.Value
				}
			}
		}
	}
	assert.InDelta(t, 200.0, byScope["scope_1"], 1e-9)
	assert.InDelta(t, 624.0, byScope["scope_2"], 1e-9)
	assert.Equal(t, int64(1), writes)
}
