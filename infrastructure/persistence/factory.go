package persistence

import (
	"fmt"

	"github.com/ProfAvery/flowy-servers/application/ports"
	"github.com/ProfAvery/flowy-servers/infrastructure/config"
	"github.com/ProfAvery/flowy-servers/infrastructure/persistence/dynamodb"
	"github.com/ProfAvery/flowy-servers/infrastructure/persistence/memory"
	"github.com/ProfAvery/flowy-servers/infrastructure/persistence/redis"
	"github.com/ProfAvery/flowy-servers/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// NewDriver opens the store driver named by cfg.StoreDriver. awsCfg is only
// used by the dynamodb driver.
func NewDriver(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) (ports.KeyValueStore, error) {
	switch cfg.StoreDriver {
	case config.DriverRedis, "":
		return redis.NewKVStore(redis.Options{
			URL:          cfg.RedisURL,
			PoolSize:     cfg.RedisPoolSize,
			DialTimeout:  cfg.RedisDialTimeout,
			ReadTimeout:  cfg.RedisReadTimeout,
			WriteTimeout: cfg.RedisWriteTimeout,
		}, logger)

	case config.DriverDynamoDB:
		return dynamodb.NewKVStore(awsdynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable, logger), nil

	case config.DriverMemory:
		return memory.NewKVStore(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Decorate wraps a driver with, from the outside in, metrics, tracing
// and the circuit breaker. Nil collaborators and disabled features are skipped.
func Decorate(store ports.KeyValueStore, cfg *config.Config, logger *zap.Logger, metrics *observability.Collector, tracer trace.Tracer) ports.KeyValueStore {
	if cfg.EnableBreaker {
		store = NewCircuitBreakerStore(store, DefaultCircuitBreakerConfig("kvstore-"+cfg.StoreDriver), logger)
	}
	if tracer != nil {
		store = NewTracedStore(store, tracer)
	}
	if metrics != nil {
		store = NewMeteredStore(store, metrics)
	}
	return store
}

// NewStore opens the configured driver and applies the decorators
func NewStore(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger, metrics *observability.Collector, tracer trace.Tracer) (ports.KeyValueStore, error) {
	driver, err := NewDriver(cfg, awsCfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Key-value store opened", zap.String("driver", cfg.StoreDriver))
	return Decorate(driver, cfg, logger, metrics, tracer), nil
}
