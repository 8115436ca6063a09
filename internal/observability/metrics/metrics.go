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

const exportInterval = 10 * time.Second

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics holds the carbon domain instruments. A nil *Metrics records
// nothing.
type Metrics struct {
	recordsWritten metric.Int64Counter
	emissionsNet   metric.Float64UpDownCounter
	reportsBuilt   metric.Int64Counter
	reportCacheHit metric.Int64Counter
	eventsFailed   metric.Int64Counter
}

// NewProvider installs the global meter provider. It is a no-op provider
// unless exporting is enabled.
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
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}
	if log != nil {
		log.Info("metrics exporter started",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}
	return provider, nil
}

// New registers the carbon instruments on provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "carbon"
	}
	meter := provider.Meter(name)

	var (
		m   Metrics
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.recordsWritten, "carbon_records_written_total", "Emission records created, updated or deleted."},
		{&m.reportsBuilt, "carbon_reports_built_total", "Dashboard reports computed from the record store."},
		{&m.reportCacheHit, "carbon_report_cache_hits_total", "Dashboard reports served from cache."},
		{&m.eventsFailed, "carbon_events_failed_total", "Record change events that could not be published."},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, fmt.Errorf("register %s: %w", c.name, err)
		}
	}

	m.emissionsNet, err = meter.Float64UpDownCounter("carbon_emissions_stored_kg",
		metric.WithDescription("Net change in stored emissions, kg CO2eq."),
		metric.WithUnit("kg"))
	if err != nil {
		return nil, fmt.Errorf("register carbon_emissions_stored_kg: %w", err)
	}
	return &m, nil
}

// RecordWrite counts a committed record mutation.
func (m *Metrics) RecordWrite(ctx context.Context, scope, action string) {
	if m == nil {
		return
	}
	m.recordsWritten.Add(ctx, 1, withLabels(
		attribute.String("scope", strings.TrimSpace(scope)),
		attribute.String("action", strings.TrimSpace(action)),
	))
}

// RecordEmissionDelta adds kg to the stored emissions of scope. Deletes and
// downward corrections pass a negative value.
func (m *Metrics) RecordEmissionDelta(ctx context.Context, scope string, kg float64) {
	if m == nil || kg == 0 {
		return
	}
	m.emissionsNet.Add(ctx, kg, withLabels(attribute.String("scope", strings.TrimSpace(scope))))
}

// RecordReportBuilt counts a dashboard computed from scratch.
func (m *Metrics) RecordReportBuilt(ctx context.Context, scopeSelector string) {
	if m == nil {
		return
	}
	m.reportsBuilt.Add(ctx, 1, withLabels(attribute.String("scope", strings.TrimSpace(scopeSelector))))
}

func (m *Metrics) RecordReportCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.reportCacheHit.Add(ctx, 1)
}

func (m *Metrics) RecordEventFailed(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.eventsFailed.Add(ctx, 1, withLabels(attribute.String("event_type", strings.TrimSpace(eventType))))
}

func withLabels(attrs ...attribute.KeyValue) metric.MeasurementOption {
	return metric.WithAttributes(FilterAttributes(attrs...)...)
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

var allowedLabelKeys = map[attribute.Key]struct{}{
	"scope":       {},
	"action":      {},
	"event_type":  {},
	"route":       {},
	"method":      {},
	"status_code": {},
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
