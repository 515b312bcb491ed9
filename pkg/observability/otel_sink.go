package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// OTelSink maps the Sink surface onto OpenTelemetry spans: a session trace
// becomes a root span, a generation becomes a child span carrying model and
// token-usage attributes, and a score becomes a span attribute plus event on
// the owning trace span. No Go SDK for the original proprietary tracing
// backend exists in the reference material this package was built from, so
// the same span hierarchy is expressed through the OTel SDK instead.
type OTelSink struct {
	tracer trace.Tracer
	tp     *sdktrace.TracerProvider
}

type otelTrace struct {
	span trace.Span
	ctx  context.Context
}

type otelGeneration struct {
	span trace.Span
}

// NewOTelSink builds a tracer provider whose stdout trace exporter writes to
// stderr (suitable for a local collector tailing the process's stderr, or
// direct inspection) and returns a Sink backed by it. Returns NoopSink when
// endpoint is empty; a non-empty endpoint only switches the sink on, and no
// span is sent to it.
func NewOTelSink(serviceName, endpoint string) (Sink, func(context.Context) error, error) {
	if endpoint == "" {
		return NoopSink{}, func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	if err != nil {
		return nil, nil, fmt.Errorf("create stdout trace exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("build otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &OTelSink{tracer: tp.Tracer(serviceName), tp: tp}, tp.Shutdown, nil
}

func (s *OTelSink) CreateTrace(name, sessionID, userID string, metadata map[string]any) Trace {
	ctx, span := s.tracer.Start(context.Background(), name)
	span.SetAttributes(attribute.String("session.id", sessionID))
	if userID != "" {
		span.SetAttributes(attribute.String("user.id", userID))
	}
	for k, v := range metadata {
		span.SetAttributes(attribute.String("metadata."+k, fmt.Sprint(v)))
	}
	return &otelTrace{span: span, ctx: ctx}
}

func (s *OTelSink) CreateGeneration(tr Trace, name, model string, input any, metadata map[string]any) Generation {
	parent, ok := tr.(*otelTrace)
	if !ok || parent == nil {
		return nil
	}
	_, span := s.tracer.Start(parent.ctx, name)
	span.SetAttributes(attribute.String("llm.model", model))
	if input != nil {
		span.SetAttributes(attribute.String("llm.input", fmt.Sprint(input)))
	}
	for k, v := range metadata {
		span.SetAttributes(attribute.String("metadata."+k, fmt.Sprint(v)))
	}
	return &otelGeneration{span: span}
}

func (s *OTelSink) EndGeneration(gen Generation, output string, usage *Usage, level, message string) {
	g, ok := gen.(*otelGeneration)
	if !ok || g == nil {
		return
	}
	g.span.SetAttributes(attribute.String("llm.output", output))
	if usage != nil {
		g.span.SetAttributes(
			attribute.Int("llm.usage.input_tokens", usage.InputTokens),
			attribute.Int("llm.usage.output_tokens", usage.OutputTokens),
		)
	}
	if level != "" {
		g.span.SetAttributes(attribute.String("llm.level", level))
	}
	if message != "" {
		g.span.AddEvent(message)
	}
	g.span.End()
}

func (s *OTelSink) AddSpan(tr Trace, name string, input, output any, metadata map[string]any) {
	parent, ok := tr.(*otelTrace)
	if !ok || parent == nil {
		return
	}
	_, span := s.tracer.Start(parent.ctx, name)
	if input != nil {
		span.SetAttributes(attribute.String("span.input", fmt.Sprint(input)))
	}
	if output != nil {
		span.SetAttributes(attribute.String("span.output", fmt.Sprint(output)))
	}
	for k, v := range metadata {
		span.SetAttributes(attribute.String("metadata."+k, fmt.Sprint(v)))
	}
	span.End()
}

func (s *OTelSink) ScoreTrace(tr Trace, name string, value float64, comment string) {
	parent, ok := tr.(*otelTrace)
	if !ok || parent == nil {
		return
	}
	parent.span.SetAttributes(attribute.Float64("score."+name, value))
	if comment != "" {
		parent.span.AddEvent("score:"+name, trace.WithAttributes(attribute.String("comment", comment)))
	}
}

func (s *OTelSink) Flush() {
	if err := s.tp.ForceFlush(context.Background()); err != nil {
		slog.Warn("otel tracer flush failed", "error", err)
	}
}

var _ Sink = (*OTelSink)(nil)
