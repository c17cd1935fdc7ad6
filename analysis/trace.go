// Copyright © 2024 The ELPS authors

package analysis

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

type tracerKey struct{}

// DefaultTracerName names the tracer used unless the context carries
// another name (see WithTracerName).
const DefaultTracerName = "wphooks"

// WithTracerName returns a context whose session spans are created by the
// named tracer of the global provider.
func WithTracerName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, tracerKey{}, name)
}

func contextTracer(ctx context.Context) trace.Tracer {
	name, ok := ctx.Value(tracerKey{}).(string)
	if !ok {
		name = DefaultTracerName
	}
	return otel.GetTracerProvider().Tracer(name)
}

const (
	attrRunID      = attribute.Key("wphooks.run_id")
	attrHookCount  = attribute.Key("wphooks.hooks")
	attrCorpusFile = attribute.Key("wphooks.corpus_files")
	attrFound      = attribute.Key("wphooks.found")
)

func (s *Session) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attrRunID.String(s.ID.String()))
	return contextTracer(ctx).Start(ctx, name, trace.WithAttributes(attrs...))
}

func fileAttr(path string) attribute.KeyValue {
	return semconv.CodeFilepath(path)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
