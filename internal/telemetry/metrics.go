// Package telemetry records OpenTelemetry metrics for tool runs.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/a3tai/pdf-tools"

// Outcome values attached to every recorded run.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the instruments used by the PDF service.
// A zero Metrics is valid and records nothing.
type Metrics struct {
	runs     metric.Int64Counter
	duration metric.Float64Histogram
	bytesOut metric.Int64Counter
}

// NewMetrics creates instruments on the global MeterProvider. Without an SDK
// installed the global provider is a no-op.
func NewMetrics() (*Metrics, error) {
	meter := otel.GetMeterProvider().Meter(meterName)

	runs, err := meter.Int64Counter(
		"pdftools.tool.runs",
		metric.WithDescription("Number of tool runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"pdftools.tool.duration",
		metric.WithDescription("Tool run duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	bytesOut, err := meter.Int64Counter(
		"pdftools.tool.output_bytes",
		metric.WithDescription("Bytes written by tool runs"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{runs: runs, duration: duration, bytesOut: bytesOut}, nil
}

// RecordRun records one finished tool run.
func (m *Metrics) RecordRun(ctx context.Context, tool string, d time.Duration, outputBytes int64, err error) {
	if m == nil || m.runs == nil {
		return
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("outcome", outcome),
	)

	m.runs.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(d.Microseconds())/1000.0, attrs)
	if outputBytes > 0 {
		m.bytesOut.Add(ctx, outputBytes, metric.WithAttributes(attribute.String("tool", tool)))
	}
}
