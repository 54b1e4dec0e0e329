package persistence

import (
	"context"

	"github.com/ProfAvery/flowy-servers/application/ports"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NewTracedStore wraps a store so every operation gets its own span
func NewTracedStore(inner ports.KeyValueStore, tracer trace.Tracer) ports.KeyValueStore {
	return &tracedStore{inner: inner, tracer: tracer}
}

type tracedStore struct {
	inner  ports.KeyValueStore
	tracer trace.Tracer
}

func (s *tracedStore) start(ctx context.Context, op, key string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.operation", op),
		attribute.String("db.key", key),
	)
	return s.tracer.Start(ctx, "kvstore."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *tracedStore) HSet(ctx context.Context, key, field, value string) error {
	ctx, span := s.start(ctx, "HSET", key, attribute.String("db.field", field))
	err := s.inner.HSet(ctx, key, field, value)
	finish(span, err)
	return err
}

func (s *tracedStore) HGet(ctx context.Context, key, field string) (string, bool, error) {
	ctx, span := s.start(ctx, "HGET", key, attribute.String("db.field", field))
	v, ok, err := s.inner.HGet(ctx, key, field)
	span.SetAttributes(attribute.Bool("db.found", ok))
	finish(span, err)
	return v, ok, err
}

func (s *tracedStore) Del(ctx context.Context, key string) error {
	ctx, span := s.start(ctx, "DEL", key)
	err := s.inner.Del(ctx, key)
	finish(span, err)
	return err
}

func (s *tracedStore) RPush(ctx context.Context, key string, values ...string) error {
	ctx, span := s.start(ctx, "RPUSH", key, attribute.Int("db.values", len(values)))
	err := s.inner.RPush(ctx, key, values...)
	finish(span, err)
	return err
}

func (s *tracedStore) LRange(ctx context.Context, key string) ([]string, error) {
	ctx, span := s.start(ctx, "LRANGE", key)
	items, err := s.inner.LRange(ctx, key)
	span.SetAttributes(attribute.Int("db.values", len(items)))
	finish(span, err)
	return items, err
}

func (s *tracedStore) Ping(ctx context.Context) error {
	ctx, span := s.start(ctx, "PING", "")
	err := s.inner.Ping(ctx)
	finish(span, err)
	return err
}

func (s *tracedStore) Close() error {
	return s.inner.Close()
}
