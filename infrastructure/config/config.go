package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Store drivers
const (
	DriverRedis    = "redis"
	DriverDynamoDB = "dynamodb"
	DriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress  string        `yaml:"server_address" validate:"required"`
	Environment    string        `yaml:"environment" validate:"required"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
	MaxRequestSize int64         `yaml:"max_request_size" validate:"gt=0"`

	// Store configuration
	StoreDriver       string        `yaml:"store_driver" validate:"required,oneof=redis dynamodb memory"`
	RedisURL          string        `yaml:"redis_url" validate:"required_if=StoreDriver redis"`
	RedisPoolSize     int           `yaml:"redis_pool_size" validate:"gte=0"`
	RedisDialTimeout  time.Duration `yaml:"redis_dial_timeout" validate:"gte=0"`
	RedisReadTimeout  time.Duration `yaml:"redis_read_timeout" validate:"gte=0"`
	RedisWriteTimeout time.Duration `yaml:"redis_write_timeout" validate:"gte=0"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"dynamodb_table" validate:"required_if=StoreDriver dynamodb"`

	// EventBusName enables EventBridge change notifications when set
	EventBusName string `yaml:"event_bus_name"`

	// Node semantics
	PurgeChildrenOnDelete bool `yaml:"purge_children_on_delete"`

	// Logging
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Feature flags
	EnableMetrics    bool    `yaml:"enable_metrics"`
	EnableTracing    bool    `yaml:"enable_tracing"`
	EnableBreaker    bool    `yaml:"enable_circuit_breaker"`
	EnableCloudWatch bool    `yaml:"enable_cloudwatch_metrics"`
	MetricsNamespace string  `yaml:"metrics_namespace" validate:"required_if=EnableCloudWatch true"`
	OTLPEndpoint     string  `yaml:"otlp_endpoint" validate:"required_if=EnableTracing true"`
	TraceSampleRate  float64 `yaml:"trace_sample_rate" validate:"gte=0,lte=1"`

	// CORS
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" validate:"min=1"`

	// ConfigFile is the YAML file the configuration was overlaid from, if any
	ConfigFile string `yaml:"-"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		ServerAddress:      ":8080",
		Environment:        "development",
		RequestTimeout:     30 * time.Second,
		MaxRequestSize:     1 << 20,
		StoreDriver:        DriverRedis,
		RedisURL:           "redis://localhost:6379/0",
		RedisPoolSize:      10,
		RedisDialTimeout:   5 * time.Second,
		RedisReadTimeout:   3 * time.Second,
		RedisWriteTimeout:  3 * time.Second,
		AWSRegion:          "us-west-2",
		DynamoDBTable:      "flowy",
		LogLevel:           "info",
		EnableMetrics:      true,
		EnableBreaker:      true,
		MetricsNamespace:   "Flowy/Gateway",
		OTLPEndpoint:       "localhost:4317",
		TraceSampleRate:    1.0,
		CORSAllowedOrigins: []string{"*"},
	}
}

// LoadConfig loads configuration from the optional YAML file named by
// APP_CONFIG and then from environment variables. Environment wins.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("APP_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.MaxRequestSize = int64(getEnvInt("MAX_REQUEST_SIZE", int(c.MaxRequestSize)))

	c.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", c.StoreDriver))
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.RedisPoolSize = getEnvInt("REDIS_POOL_SIZE", c.RedisPoolSize)
	c.RedisDialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", c.RedisDialTimeout)
	c.RedisReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", c.RedisReadTimeout)
	c.RedisWriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", c.RedisWriteTimeout)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.DynamoDBTable))
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.PurgeChildrenOnDelete = getEnvBool("PURGE_CHILDREN_ON_DELETE", c.PurgeChildrenOnDelete)

	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableBreaker = getEnvBool("ENABLE_CIRCUIT_BREAKER", c.EnableBreaker)
	c.EnableCloudWatch = getEnvBool("ENABLE_CLOUDWATCH_METRICS", c.EnableCloudWatch)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)
	c.TraceSampleRate = getEnvFloat("TRACE_SAMPLE_RATE", c.TraceSampleRate)

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.CORSAllowedOrigins = splitList(origins)
	}
}

var validate = validator.New()

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("5s") or a plain number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
