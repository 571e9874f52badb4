package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	// Flat keys so the deployment surface stays DATABASE_URL, REDIS_URL,
	// EVENT_BUS_NAME, USE_AWS_EVENTS and DLQ_URL. REDIS_URL is optional:
	// absence degrades cache, lock and rate limiting to fail-open.
	DatabaseURL  string `koanf:"database_url" validate:"required"`
	RedisURL     string `koanf:"redis_url"`
	EventBusName string `koanf:"event_bus_name"`
	UseAWSEvents bool   `koanf:"use_aws_events"`
	DLQURL       string `koanf:"dlq_url"`
	QueueURL     string `koanf:"queue_url"`
	// MigrationsPath is a golang-migrate source URL.
	MigrationsPath string `koanf:"migrations_path"`

	Primary   Primary         `koanf:"primary"`
	Server    ServerConfig    `koanf:"server"`
	Publisher PublisherConfig `koanf:"publisher"`
	Gateway   GatewayConfig   `koanf:"gateway"`
	Logger    LoggerConfig    `koanf:"logger"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port            string        `koanf:"port" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required"`
}

type PublisherConfig struct {
	Interval  time.Duration `koanf:"interval" validate:"required"`
	BatchSize int           `koanf:"batch_size" validate:"required"`
}

type GatewayConfig struct {
	// BaseURL empty means the simulated gateway is used.
	BaseURL     string        `koanf:"base_url"`
	ConnTimeout time.Duration `koanf:"conn_timeout" validate:"required"`
	// FailureRate only applies to the simulated gateway.
	FailureRate float64 `koanf:"failure_rate"`
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// NewLogger builds the process-wide slog logger from the configured level
// and format.
func (c LoggerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(c.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func defaults() map[string]any {
	return map[string]any{
		"primary.env":             "development",
		"server.port":             "8080",
		"server.read_timeout":     "10s",
		"server.write_timeout":    "10s",
		"server.idle_timeout":     "60s",
		"server.shutdown_timeout": "30s",
		"publisher.interval":      "5s",
		"publisher.batch_size":    10,
		"gateway.conn_timeout":    "10s",
		"gateway.failure_rate":    0.3,
		"event_bus_name":          "default",
		"migrations_path":         "file://migrations",
		"logger.level":            "info",
		"logger.format":           "text",
	}
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load config defaults", "error", err)
		return nil, err
	}

	// SERVER__PORT becomes server.port; single-underscore names such as
	// DATABASE_URL stay flat.
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	if err := k.Unmarshal("", mainConfig); err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	if err := validate.Struct(mainConfig); err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

func (c *Config) IsProd() bool {
	return c.Primary.Env == "production"
}
