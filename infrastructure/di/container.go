package di

import (
	"net/http"

	"github.com/ProfAvery/flowy-servers/application/commands/bus"
	"github.com/ProfAvery/flowy-servers/application/ports"
	querybus "github.com/ProfAvery/flowy-servers/application/queries/bus"
	"github.com/ProfAvery/flowy-servers/application/services"
	"github.com/ProfAvery/flowy-servers/infrastructure/config"
	"github.com/ProfAvery/flowy-servers/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	LogLevel   zap.AtomicLevel
	Logger     *zap.Logger
	Metrics    *observability.Collector
	Tracing    *observability.TracerProvider
	AWS        aws.Config
	Publisher  ports.EventPublisher
	CloudWatch *observability.CloudWatchMetrics
	Store      ports.KeyValueStore
	Gateway    *services.NodeGateway
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Handler    http.Handler
}

// WatchConfig starts a watcher on the configuration file, if there is one,
// that applies log level changes at runtime. The returned stop function is
// always safe to call.
func (c *Container) WatchConfig() (stop func(), err error) {
	if c.Config.ConfigFile == "" {
		return func() {}, nil
	}

	watcher, err := config.NewWatcher(c.Config, c.Logger)
	if err != nil {
		return func() {}, err
	}

	watcher.OnChange(func(next *config.Config) {
		if err := c.LogLevel.UnmarshalText([]byte(next.LogLevel)); err != nil {
			c.Logger.Warn("Ignoring invalid log level", zap.String("level", next.LogLevel), zap.Error(err))
		}
	})
	watcher.Start()

	return watcher.Stop, nil
}
