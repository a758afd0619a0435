package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"

	"htscreen/internal/config"
)

const (
	ServiceName = "htscreen"
	MeterName   = "htscreen"
)

// MetricsProvider holds the meter used by the pipeline and the Prometheus
// registry backing it. Registry is nil when metrics are disabled.
type MetricsProvider struct {
	MeterProvider *sdkmetric.MeterProvider
	Meter         metric.Meter
	Registry      *promclient.Registry
}

// InitializeMetrics sets up an OpenTelemetry meter provider exporting through
// a dedicated Prometheus registry. Disabled metrics yield a no-op meter so
// callers never branch on configuration.
func InitializeMetrics(cfg config.MetricsConfig, logger *slog.Logger) (*MetricsProvider, error) {
	if logger == nil {
		logger = GetLogger()
	}

	if !cfg.Enabled || cfg.Exporter == "none" {
		logger.Debug("metrics disabled")
		return &MetricsProvider{Meter: noop.NewMeterProvider().Meter(MeterName)}, nil
	}

	switch cfg.Exporter {
	case "prometheus":
		registry := promclient.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		res := resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(config.AppVersion),
		)

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		logger.Info("metrics initialized", slog.String("exporter", cfg.Exporter))

		return &MetricsProvider{
			MeterProvider: mp,
			Meter:         mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion)),
			Registry:      registry,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported metric exporter: %s", cfg.Exporter)
	}
}

// Shutdown flushes and stops the meter provider
func (p *MetricsProvider) Shutdown(ctx context.Context) error {
	if p == nil || p.MeterProvider == nil {
		return nil
	}
	return p.MeterProvider.Shutdown(ctx)
}

// WriteText writes the current metric families in Prometheus text format
func (p *MetricsProvider) WriteText(w io.Writer) error {
	if p == nil || p.Registry == nil {
		return nil
	}

	families, err := p.Registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// PipelineMetrics are the counters recorded by a screening or hit run
type PipelineMetrics struct {
	PlatesParsed    metric.Int64Counter
	PlateFailures   metric.Int64Counter
	PlatesExcluded  metric.Int64Counter
	OutliersFlagged metric.Int64Counter
	TransferRows    metric.Int64Counter
	CompoundsFitted metric.Int64Counter
	FitFailures     metric.Int64Counter
	StepDuration    metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}

	var (
		m   PipelineMetrics
		err error
	)

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&m.PlatesParsed, "plates_parsed", "Plate exports parsed successfully"},
		{&m.PlateFailures, "plate_parse_failures", "Plate exports rejected by the reader"},
		{&m.PlatesExcluded, "plates_excluded", "Plates removed by the Z-factor quality filter"},
		{&m.OutliersFlagged, "control_outliers", "Control wells flagged as outliers"},
		{&m.TransferRows, "transfer_rows", "Transfer records read from liquid-handler logs"},
		{&m.CompoundsFitted, "compounds_fitted", "Compounds passed to the dose-response fit"},
		{&m.FitFailures, "fit_failures", "Dose-response fits that did not converge"},
	}
	for _, c := range counters {
		*c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", c.name, err)
		}
	}

	m.StepDuration, err = meter.Float64Histogram(
		"pipeline_step_duration_seconds",
		metric.WithDescription("Pipeline step execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create histogram: %w", err)
	}

	return &m, nil
}
