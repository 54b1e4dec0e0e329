package persistence

import (
	"context"
	"time"

	"github.com/ProfAvery/flowy-servers/application/ports"
	"github.com/ProfAvery/flowy-servers/pkg/observability"
)

// NewMeteredStore records a counter and a latency histogram per store operation
func NewMeteredStore(inner ports.KeyValueStore, metrics *observability.Collector) ports.KeyValueStore {
	return &meteredStore{inner: inner, metrics: metrics}
}

type meteredStore struct {
	inner   ports.KeyValueStore
	metrics *observability.Collector
}

func (s *meteredStore) HSet(ctx context.Context, key, field, value string) error {
	start := time.Now()
	err := s.inner.HSet(ctx, key, field, value)
	s.metrics.ObserveStore("HSET", err, time.Since(start))
	return err
}

func (s *meteredStore) HGet(ctx context.Context, key, field string) (string, bool, error) {
	start := time.Now()
	v, ok, err := s.inner.HGet(ctx, key, field)
	s.metrics.ObserveStore("HGET", err, time.Since(start))
	return v, ok, err
}

func (s *meteredStore) Del(ctx context.Context, key string) error {
	start := time.Now()
	err := s.inner.Del(ctx, key)
	s.metrics.ObserveStore("DEL", err, time.Since(start))
	return err
}

func (s *meteredStore) RPush(ctx context.Context, key string, values ...string) error {
	start := time.Now()
	err := s.inner.RPush(ctx, key, values...)
	s.metrics.ObserveStore("RPUSH", err, time.Since(start))
	return err
}

func (s *meteredStore) LRange(ctx context.Context, key string) ([]string, error) {
	start := time.Now()
	items, err := s.inner.LRange(ctx, key)
	s.metrics.ObserveStore("LRANGE", err, time.Since(start))
	return items, err
}

func (s *meteredStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

func (s *meteredStore) Close() error {
	return s.inner.Close()
}
