package runner

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Cyclone1070/turnkit/internal/agent"
	"github.com/Cyclone1070/turnkit/internal/guardrail"
)

func (r *Runner) startRun(ctx context.Context, runID string, a *agent.Agent) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "turnkit.run",
		trace.WithAttributes(
			attribute.String("turnkit.run_id", runID),
			attribute.String("turnkit.agent", a.Name()),
		),
	)
}

func (r *Runner) startModel(ctx context.Context, a *agent.Agent, turn int) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "turnkit.model",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("turnkit.agent", a.Name()),
			attribute.Int("turnkit.turn", turn),
		),
	)
}

func (r *Runner) startTool(ctx context.Context, name, callID string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "turnkit.tool",
		trace.WithAttributes(
			attribute.String("tool.name", name),
			attribute.String("tool.call_id", callID),
		),
	)
}

func (r *Runner) startGuardrail(ctx context.Context, dir guardrail.Direction, name string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "turnkit.guardrail",
		trace.WithAttributes(
			attribute.String("guardrail.direction", string(dir)),
			attribute.String("guardrail.name", name),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
