package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ProfAvery/flowy-servers/application/commands"
	"github.com/ProfAvery/flowy-servers/application/ports"
	"github.com/ProfAvery/flowy-servers/application/queries"
	"github.com/ProfAvery/flowy-servers/infrastructure/config"
	"github.com/ProfAvery/flowy-servers/infrastructure/messaging/eventbridge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func memoryConfig() *config.Config {
	cfg := config.Default()
	cfg.StoreDriver = config.DriverMemory
	cfg.Environment = "test"
	return cfg
}

func TestInitializeContainer(t *testing.T) {
	ctx := context.Background()
	container, cleanup, err := InitializeContainer(ctx, memoryConfig())
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, container.Metrics)
	assert.False(t, container.Tracing.Enabled())
	require.NoError(t, container.Store.Ping(ctx))

	text := "wired"
	require.NoError(t, container.CommandBus.Send(ctx, commands.UpsertNodeCommand{
		NodeID: "n", Text: &text, Children: []string{"c"},
	}))

	result, err := container.QueryBus.Ask(ctx, queries.GetNodeQuery{NodeID: "n"})
	require.NoError(t, err)
	node := result.(*queries.GetNodeResult)
	assert.Equal(t, "wired", *node.Text)
	assert.Equal(t, []string{"c"}, node.Children)
}

func TestInitializeContainerWithoutMetrics(t *testing.T) {
	cfg := memoryConfig()
	cfg.EnableMetrics = false
	cfg.EnableBreaker = false

	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, container.Metrics)
}

func TestInitializeContainerAWSIntegrations(t *testing.T) {
	cfg := memoryConfig()
	assert.Empty(t, cfg.EventBusName)

	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	cleanup()
	assert.Equal(t, ports.NoopEventPublisher{}, container.Publisher)
	assert.Nil(t, container.CloudWatch)

	cfg = memoryConfig()
	cfg.EventBusName = "flowy-events"
	cfg.EnableCloudWatch = true

	container, cleanup, err = InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &eventbridge.Publisher{}, container.Publisher)
	assert.NotNil(t, container.CloudWatch)
	assert.Equal(t, cfg.AWSRegion, container.AWS.Region)
}

func TestInitializeContainerRejectsBadLogLevel(t *testing.T) {
	cfg := memoryConfig()
	cfg.LogLevel = "chatty"

	_, _, err := InitializeContainer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestCleanupClosesStore(t *testing.T) {
	container, cleanup, err := InitializeContainer(context.Background(), memoryConfig())
	require.NoError(t, err)

	cleanup()
	assert.Error(t, container.Store.Ping(context.Background()))
}

func TestWatchConfigAppliesLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("STORE_DRIVER", "")
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store_driver: memory\nlog_level: info\n"), 0o644))

	cfg, err := config.Reload(path)
	require.NoError(t, err)

	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	stop, err := container.WatchConfig()
	require.NoError(t, err)
	defer stop()

	require.Equal(t, zapcore.InfoLevel, container.LogLevel.Level())
	require.NoError(t, os.WriteFile(path, []byte("store_driver: memory\nlog_level: debug\n"), 0o644))

	assert.Eventually(t, func() bool {
		return container.LogLevel.Level() == zapcore.DebugLevel
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatchConfigWithoutFile(t *testing.T) {
	container, cleanup, err := InitializeContainer(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer cleanup()

	stop, err := container.WatchConfig()
	require.NoError(t, err)
	stop()
}
