package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ProfAvery/flowy-servers/application/ports"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CircuitBreakerConfig configures the breaker placed in front of the store
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // requests allowed through while half-open
	Interval         time.Duration // closed-state window after which counts reset
	Timeout          time.Duration // how long the breaker stays open
	FailureThreshold float64       // failure ratio that trips the breaker
	MinRequests      uint32        // requests needed before the ratio is considered
}

// DefaultCircuitBreakerConfig returns a default configuration for the store breaker
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      10,
	}
}

// circuitBreakerStore rejects calls with ErrStoreUnavailable while the
// breaker is open. Only unavailability trips it; server replies such as
// WRONGTYPE mean the store is up.
type circuitBreakerStore struct {
	inner  ports.KeyValueStore
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewCircuitBreakerStore wraps a store with a circuit breaker
func NewCircuitBreakerStore(inner ports.KeyValueStore, config CircuitBreakerConfig, logger *zap.Logger) ports.KeyValueStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ports.ErrStoreUnavailable)
		},
	})

	return &circuitBreakerStore{inner: inner, cb: cb, logger: logger}
}

func (s *circuitBreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := s.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: circuit breaker %s: %v", ports.ErrStoreUnavailable, s.cb.Name(), err)
	}
	return result, err
}

func (s *circuitBreakerStore) HSet(ctx context.Context, key, field, value string) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.inner.HSet(ctx, key, field, value)
	})
	return err
}

type hgetResult struct {
	value string
	found bool
}

func (s *circuitBreakerStore) HGet(ctx context.Context, key, field string) (string, bool, error) {
	res, err := s.execute(func() (interface{}, error) {
		v, ok, err := s.inner.HGet(ctx, key, field)
		return hgetResult{value: v, found: ok}, err
	})
	if err != nil {
		return "", false, err
	}
	r := res.(hgetResult)
	return r.value, r.found, nil
}

func (s *circuitBreakerStore) Del(ctx context.Context, key string) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.inner.Del(ctx, key)
	})
	return err
}

func (s *circuitBreakerStore) RPush(ctx context.Context, key string, values ...string) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.inner.RPush(ctx, key, values...)
	})
	return err
}

func (s *circuitBreakerStore) LRange(ctx context.Context, key string) ([]string, error) {
	res, err := s.execute(func() (interface{}, error) {
		return s.inner.LRange(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}

// Ping bypasses the breaker so readiness probes see the real state
func (s *circuitBreakerStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

func (s *circuitBreakerStore) Close() error {
	return s.inner.Close()
}
