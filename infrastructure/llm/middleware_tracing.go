package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/code-scoring/engine/internal/ports"
)

const tracerName = "github.com/code-scoring/engine/infrastructure/llm"

// WithTracing wraps each provider call in an OpenTelemetry span carrying the
// provider kind and requested model. Spans end with an error status when the
// call fails, so traces line up with the retry and metrics layers around it.
func WithTracing() Middleware {
	return func(next ports.CompletionCaller) ports.CompletionCaller {
		return &tracingCaller{next: next, tracer: otel.Tracer(tracerName)}
	}
}

type tracingCaller struct {
	next   ports.CompletionCaller
	tracer trace.Tracer
}

func (c *tracingCaller) Call(ctx context.Context, adapter ports.ProviderAdapter, prompt, model string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "llm.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.provider", adapter.Provider().String()),
			attribute.String("llm.model", model),
		))
	defer span.End()

	text, err := c.next.Call(ctx, adapter, prompt, model)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.Int("llm.completion_length", len(text)))
	return text, nil
}
