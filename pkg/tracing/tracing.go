// Package tracing installs the process-wide OpenTelemetry tracer provider.
// Finished spans are written to the structured log at debug level, so a
// message can be followed from the gateway to the officer by its trace ID.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// LogExporter writes finished spans to a zap logger.
type LogExporter struct {
	log *zap.Logger
}

func NewLogExporter(log *zap.Logger) *LogExporter {
	return &LogExporter{log: log}
}

func (e *LogExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		fields := []zap.Field{
			zap.String("traceID", s.SpanContext().TraceID().String()),
			zap.String("spanID", s.SpanContext().SpanID().String()),
			zap.Duration("duration", s.EndTime().Sub(s.StartTime())),
			zap.String("status", s.Status().Code.String()),
		}
		if s.Parent().IsValid() {
			fields = append(fields, zap.String("parentSpanID", s.Parent().SpanID().String()))
		}
		for _, kv := range s.Attributes() {
			fields = append(fields, zap.String(string(kv.Key), kv.Value.Emit()))
		}
		e.log.Debug("span "+s.Name(), fields...)
	}

	return nil
}

func (e *LogExporter) Shutdown(context.Context) error {
	return nil
}

// Setup installs a tracer provider exporting to log and returns its shutdown
// function, which flushes buffered spans.
func Setup(log *zap.Logger) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(NewLogExporter(log.Named("trace"))),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("could not shutdown tracer provider: %w", err)
		}

		return nil
	}
}
