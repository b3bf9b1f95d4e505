package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type Metrics struct {
	Operations        metric.Int64Counter
	OperationErrors   metric.Int64Counter
	OperationDuration metric.Float64Histogram
	HTTPRequests      metric.Int64Counter
	HTTPDuration      metric.Float64Histogram
	ActiveSessions    metric.Int64UpDownCounter
}

// Setup creates the meters on a dedicated Prometheus registry and returns
// the handler that serves it.
func Setup(serviceName string) (*Metrics, http.Handler, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(serviceName)

	m := &Metrics{}

	m.Operations, err = meter.Int64Counter(
		"kvk_operations_total",
		metric.WithDescription("Total number of key-value store operations"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.OperationErrors, err = meter.Int64Counter(
		"kvk_operation_errors_total",
		metric.WithDescription("Total number of failed key-value store operations"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.OperationDuration, err = meter.Float64Histogram(
		"kvk_operation_duration_seconds",
		metric.WithDescription("Key-value store operation duration in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPRequests, err = meter.Int64Counter(
		"kvk_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPDuration, err = meter.Float64Histogram(
		"kvk_http_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.ActiveSessions, err = meter.Int64UpDownCounter(
		"kvk_active_sessions",
		metric.WithDescription("Number of open keyword sessions"),
	)
	if err != nil {
		return nil, nil, err
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m, handler, nil
}

// RecordOperation implements facade.Recorder
func (m *Metrics) RecordOperation(ctx context.Context, op string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	labels := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	)

	m.Operations.Add(ctx, 1, labels)
	m.OperationDuration.Record(ctx, duration.Seconds(), labels)
	if err != nil {
		m.OperationErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	}
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)

	m.HTTPRequests.Add(ctx, 1, labels)
	m.HTTPDuration.Record(ctx, duration.Seconds(), labels)
}

func (m *Metrics) IncrementSessions(ctx context.Context) {
	m.ActiveSessions.Add(ctx, 1)
}

func (m *Metrics) DecrementSessions(ctx context.Context) {
	m.ActiveSessions.Add(ctx, -1)
}
