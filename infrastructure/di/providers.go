package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ProfAvery/flowy-servers/application/commands"
	"github.com/ProfAvery/flowy-servers/application/commands/bus"
	commandhandlers "github.com/ProfAvery/flowy-servers/application/commands/handlers"
	"github.com/ProfAvery/flowy-servers/application/ports"
	"github.com/ProfAvery/flowy-servers/application/queries"
	querybus "github.com/ProfAvery/flowy-servers/application/queries/bus"
	queryhandlers "github.com/ProfAvery/flowy-servers/application/queries/handlers"
	"github.com/ProfAvery/flowy-servers/application/services"
	"github.com/ProfAvery/flowy-servers/infrastructure/config"
	"github.com/ProfAvery/flowy-servers/infrastructure/messaging/eventbridge"
	"github.com/ProfAvery/flowy-servers/infrastructure/persistence"
	"github.com/ProfAvery/flowy-servers/interfaces/http/rest"
	"github.com/ProfAvery/flowy-servers/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "flowy"

// ProvideLogLevel parses the configured level into an adjustable level
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return level, nil
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zcfg.Level = level

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("service", serviceName), zap.String("environment", cfg.Environment)), nil
}

// ProvideMetrics creates the Prometheus collector, or nil when metrics are off
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector(serviceName)
}

// ProvideTracerProvider initializes tracing and returns a cleanup that flushes spans
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.EnableTracing,
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRate:  cfg.TraceSampleRate,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Failed to shut down tracer provider", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideAWSConfig loads the shared AWS configuration. Loading only resolves
// the credential chain; nothing is contacted until a client is used.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// ProvideEventPublisher returns an EventBridge publisher when an event bus is
// configured, otherwise a publisher that drops events
func ProvideEventPublisher(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return ports.NoopEventPublisher{}
	}
	logger.Info("Publishing node events", zap.String("eventBus", cfg.EventBusName))
	return eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger)
}

// ProvideCloudWatchMetrics returns the CloudWatch sink, or nil when disabled
func ProvideCloudWatchMetrics(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) *observability.CloudWatchMetrics {
	if !cfg.EnableCloudWatch {
		return nil
	}
	return observability.NewCloudWatchMetrics(cfg.MetricsNamespace, cloudwatch.NewFromConfig(awsCfg), logger)
}

// ProvideKeyValueStore opens the configured store driver with its decorators
// and returns a cleanup that closes it
func ProvideKeyValueStore(
	cfg *config.Config,
	awsCfg aws.Config,
	logger *zap.Logger,
	metrics *observability.Collector,
	tp *observability.TracerProvider,
) (ports.KeyValueStore, func(), error) {
	var tracer trace.Tracer
	if tp.Enabled() {
		tracer = tp.Tracer()
	}

	store, err := persistence.NewStore(cfg, awsCfg, logger, metrics, tracer)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close key-value store", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideNodeGateway creates the node gateway
func ProvideNodeGateway(store ports.KeyValueStore, cfg *config.Config, logger *zap.Logger) *services.NodeGateway {
	return services.NewNodeGateway(store, logger,
		services.WithChildrenPurge(cfg.PurgeChildrenOnDelete),
	)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	gateway *services.NodeGateway,
	publisher ports.EventPublisher,
	metrics *observability.Collector,
	cloudWatch *observability.CloudWatchMetrics,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	middlewares := []bus.Middleware{bus.LoggingMiddleware(logger)}
	if metrics != nil {
		middlewares = append(middlewares, bus.MetricsMiddleware(metrics))
	}
	if cloudWatch != nil {
		middlewares = append(middlewares, bus.RecorderMiddleware(cloudWatch))
	}
	commandBus := bus.NewCommandBus(middlewares...)

	upsertHandler := commandhandlers.NewUpsertNodeHandler(gateway, publisher, logger)
	if err := commandBus.Register(commands.UpsertNodeCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			upsertCmd, ok := cmd.(commands.UpsertNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return upsertHandler.Handle(ctx, upsertCmd)
		},
	)); err != nil {
		return nil, err
	}

	deleteHandler := commandhandlers.NewDeleteNodeHandler(gateway, publisher, logger)
	if err := commandBus.Register(commands.DeleteNodeCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return deleteHandler.Handle(ctx, deleteCmd)
		},
	)); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	gateway *services.NodeGateway,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	middlewares := []querybus.Middleware{querybus.LoggingMiddleware(logger)}
	if metrics != nil {
		middlewares = append(middlewares, querybus.MetricsMiddleware(metrics))
	}
	queryBus := querybus.NewQueryBus(middlewares...)

	getNodeHandler := queryhandlers.NewGetNodeHandler(gateway, logger)
	if err := queryBus.Register(queries.GetNodeQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetNodeQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return getNodeHandler.Handle(ctx, getQuery)
		},
	)); err != nil {
		return nil, err
	}

	return queryBus, nil
}

// ProvideRouter builds the HTTP handler
func ProvideRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	store ports.KeyValueStore,
	metrics *observability.Collector,
	logger *zap.Logger,
) http.Handler {
	return rest.NewRouter(commandBus, queryBus, store, metrics, rest.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxRequestSize,
		Debug:          cfg.IsDevelopment(),
	}, logger).Setup()
}
