// Package redis implements the key-value store port on top of go-redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ProfAvery/flowy-servers/application/ports"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options tunes the Redis client beyond what the URL carries.
type Options struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KVStore is a ports.KeyValueStore backed by a single Redis client.
type KVStore struct {
	client goredis.UniversalClient
	logger *zap.Logger
}

// NewKVStore parses the connection URL and creates a client. It does not
// contact the server; use Ping for that.
func NewKVStore(opts Options, logger *zap.Logger) (*KVStore, error) {
	parsed, err := goredis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if opts.PoolSize > 0 {
		parsed.PoolSize = opts.PoolSize
	}
	if opts.DialTimeout > 0 {
		parsed.DialTimeout = opts.DialTimeout
	}
	if opts.ReadTimeout > 0 {
		parsed.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		parsed.WriteTimeout = opts.WriteTimeout
	}

	return NewKVStoreWithClient(goredis.NewClient(parsed), logger), nil
}

// NewKVStoreWithClient wraps an existing client
func NewKVStoreWithClient(client goredis.UniversalClient, logger *zap.Logger) *KVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KVStore{client: client, logger: logger}
}

// HSet sets a hash field
func (s *KVStore) HSet(ctx context.Context, key, field, value string) error {
	return classify(s.client.HSet(ctx, key, field, value).Err())
}

// HGet reads a hash field; redis.Nil means the field is absent
func (s *KVStore) HGet(ctx context.Context, key, field string) (string, bool, error) {
	v, err := s.client.HGet(ctx, key, field).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, classify(err)
	}
	return v, true, nil
}

// Del removes a key
func (s *KVStore) Del(ctx context.Context, key string) error {
	return classify(s.client.Del(ctx, key).Err())
}

// RPush appends values to a list
func (s *KVStore) RPush(ctx context.Context, key string, values ...string) error {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return classify(s.client.RPush(ctx, key, args...).Err())
}

// LRange returns the full list
func (s *KVStore) LRange(ctx context.Context, key string) ([]string, error) {
	items, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, classify(err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// Ping checks connectivity
func (s *KVStore) Ping(ctx context.Context) error {
	return classify(s.client.Ping(ctx).Err())
}

// Close releases the connection pool
func (s *KVStore) Close() error {
	s.logger.Info("Closing redis client")
	return s.client.Close()
}

// classify marks connection-level failures as ports.ErrStoreUnavailable and
// passes server replies (WRONGTYPE, OOM, READONLY, ...) through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	switch {
	case errors.Is(err, goredis.ErrClosed), errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", ports.ErrStoreUnavailable, err)
	}

	var redisErr goredis.Error
	if errors.As(err, &redisErr) {
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	// io.EOF and friends from a dropped connection
	return fmt.Errorf("%w: %w", ports.ErrStoreUnavailable, err)
}
