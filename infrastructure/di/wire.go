//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/ProfAvery/flowy-servers/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideMetrics,
	ProvideTracerProvider,
	ProvideAWSConfig,
	ProvideEventPublisher,
	ProvideCloudWatchMetrics,
	ProvideKeyValueStore,
	ProvideNodeGateway,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The cleanup closes
// the store and flushes the tracer.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
