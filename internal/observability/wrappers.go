package observability

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tidemark/vigil/internal/tools"
)

// InstrumentedExecutor wraps a tools.Executor with tracing and anomaly
// detection. Counter and histogram recording lives in the session manager,
// which owns the lifecycle transitions; this wrapper only covers the
// execution itself so MCP-backed and simulated executors are observed
// identically.
type InstrumentedExecutor struct {
	inner   tools.Executor
	tracer  trace.Tracer
	anomaly *AnomalyDetector
}

// NewInstrumentedExecutor wraps an executor with observability. Either
// component may be nil.
func NewInstrumentedExecutor(inner tools.Executor, ts *TracerSetup, anomaly *AnomalyDetector) *InstrumentedExecutor {
	var tracer trace.Tracer
	if ts != nil {
		tracer = ts.Tracer()
	}
	return &InstrumentedExecutor{
		inner:   inner,
		tracer:  tracer,
		anomaly: anomaly,
	}
}

func (e *InstrumentedExecutor) Execute(ctx context.Context, toolName string, args map[string]any) (*tools.Result, error) {
	if e.tracer != nil {
		var span trace.Span
		ctx, span = e.tracer.Start(ctx, "tool.execute",
			trace.WithAttributes(
				attribute.String("tool.name", toolName),
			))
		defer span.End()
	}

	result, err := e.inner.Execute(ctx, toolName, args)

	if err != nil {
		if e.tracer != nil {
			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	} else if result != nil && result.NoData && e.tracer != nil {
		span := trace.SpanFromContext(ctx)
		span.SetAttributes(attribute.Bool("tool.no_data", true))
	}

	if e.anomaly != nil {
		if err != nil {
			e.anomaly.RecordError(toolName)
		} else {
			e.anomaly.RecordSuccess(toolName)
		}
	}

	return result, err
}

var _ tools.Executor = (*InstrumentedExecutor)(nil)

// statusCode returns the HTTP status code as a string for metric labels.
func statusCode(code int) string {
	return strconv.Itoa(code)
}
