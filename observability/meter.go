package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records run-level counters and durations. All instruments come
// from the globally installed meter provider.
type Metrics struct {
	pipelineRuns  metric.Int64Counter
	windows       metric.Int64Counter
	rowsLoaded    metric.Int64Counter
	stepDurations metric.Float64Histogram
}

// NewMetrics builds the engine's instruments. Errors from instrument
// creation are not possible with valid names, so they are ignored.
func NewMetrics() *Metrics {
	meter := otel.Meter(tracerName)
	m := &Metrics{}
	m.pipelineRuns, _ = meter.Int64Counter("dft.pipeline.runs",
		metric.WithDescription("pipeline run outcomes by status"))
	m.windows, _ = meter.Int64Counter("dft.microbatch.windows",
		metric.WithDescription("processed batch windows"))
	m.rowsLoaded, _ = meter.Int64Counter("dft.rows.loaded",
		metric.WithDescription("rows handed to endpoints"))
	m.stepDurations, _ = meter.Float64Histogram("dft.step.duration",
		metric.WithDescription("step execution time in seconds"))
	return m
}

// RecordPipelineRun counts one pipeline outcome.
func (m *Metrics) RecordPipelineRun(ctx context.Context, pipeline, status string) {
	if m == nil {
		return
	}
	m.pipelineRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("status", status),
	))
}

// RecordWindow counts one processed batch window.
func (m *Metrics) RecordWindow(ctx context.Context, pipeline string) {
	if m == nil {
		return
	}
	m.windows.Add(ctx, 1, metric.WithAttributes(attribute.String("pipeline", pipeline)))
}

// RecordRowsLoaded counts rows handed to an endpoint step.
func (m *Metrics) RecordRowsLoaded(ctx context.Context, pipeline string, rows int) {
	if m == nil {
		return
	}
	m.rowsLoaded.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("pipeline", pipeline)))
}

// RecordStepDuration records one step execution.
func (m *Metrics) RecordStepDuration(ctx context.Context, pipeline, step string, d time.Duration) {
	if m == nil {
		return
	}
	m.stepDurations.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("step", step),
	))
}
