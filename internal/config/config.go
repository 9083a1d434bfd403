// Package config loads typed configuration from .env plus the process
// environment, the same godotenv+envconfig combination the ancestor uses,
// with validation tags checked via go-playground/validator.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	defaultAppMode = "dev"
	defaultAppPort = "8080"
	defaultAppPath = "/"

	defaultServerReadTimeout     = 15 * time.Second
	defaultServerWriteTimeout    = 15 * time.Second
	defaultServerIdleTimeout     = 60 * time.Second
	defaultServerShutdownTimeout = 10 * time.Second

	defaultDBMaxConns     = int32(10)
	defaultDBMinConns     = int32(2)
	defaultDBConnLifetime = 30 * time.Minute

	defaultRedisTTL = 15 * time.Second

	defaultSweepInterval = 30 * time.Second
	defaultMaxAttempts   = 3

	defaultBankTimeout = 10 * time.Second
)

type (
	// Configs is the top-level configuration tree. Each field loads from
	// its own environment prefix via envconfig.Process.
	Configs struct {
		APP        AppConfig
		SERVER     ServerConfig
		POSTGRES   PostgresConfig
		MONGO      MongoConfig
		CLICKHOUSE ClickHouseConfig
		REDIS      RedisConfig
		NATS       NatsConfig
		RABBITMQ   RabbitMQConfig
		BANK       BankConfig
		METRICS    MetricsConfig
		TRACING    TracingConfig
	}

	AppConfig struct {
		Mode          string `validate:"oneof=dev prod test"`
		Port          string
		Path          string
		SweepInterval time.Duration
		MaxAttempts   int
	}

	ServerConfig struct {
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		IdleTimeout     time.Duration
		ShutdownTimeout time.Duration
	}

	// PostgresConfig is the canonical payment/status_history store.
	PostgresConfig struct {
		DSN             string `validate:"required"`
		MaxConns        int32
		MinConns        int32
		ConnMaxLifetime time.Duration
	}

	// MongoConfig backs the free-form intent document mirror. Both fields are
	// optional: an unset URI disables the mirror rather than failing boot,
	// since intentstore is a best-effort projection, not the source of truth.
	MongoConfig struct {
		URI      string
		Database string
	}

	// ClickHouseConfig backs the append-only status_history audit mirror.
	// Addr is optional for the same reason as MongoConfig.URI above.
	ClickHouseConfig struct {
		Addr     string
		Database string
		Username string
		Password string
	}

	// RedisConfig backs the shared tier of the merchant directory cache.
	RedisConfig struct {
		Addr     string `validate:"required"`
		Password string
		DB       int
		TTL      time.Duration
	}

	// NatsConfig carries the webhook outbox JetStream stream.
	NatsConfig struct {
		URL          string `validate:"required"`
		StreamName   string
		ConsumerName string
	}

	// RabbitMQConfig backs the webhook dead-letter queue.
	RabbitMQConfig struct {
		URL       string `validate:"required"`
		DeadQueue string
	}

	// BankConfig points at the simulated bank the gateway calls out to.
	BankConfig struct {
		BaseURL string `validate:"required"`
		Timeout time.Duration
	}

	MetricsConfig struct {
		Enabled   bool
		Path      string
		Namespace string
	}

	TracingConfig struct {
		Enabled     bool
		ServiceName string
		OTLPEndpoint string
	}
)

// New populates Configs from a .env file (if present, next to the working
// directory) merged with the process environment.
func New() (cfg Configs, err error) {
	root, err := os.Getwd()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(root, ".env"))

	cfg.APP = AppConfig{
		Mode:          defaultAppMode,
		Port:          defaultAppPort,
		Path:          defaultAppPath,
		SweepInterval: defaultSweepInterval,
		MaxAttempts:   defaultMaxAttempts,
	}
	cfg.SERVER = ServerConfig{
		ReadTimeout:     defaultServerReadTimeout,
		WriteTimeout:    defaultServerWriteTimeout,
		IdleTimeout:     defaultServerIdleTimeout,
		ShutdownTimeout: defaultServerShutdownTimeout,
	}
	cfg.POSTGRES = PostgresConfig{
		MaxConns:        defaultDBMaxConns,
		MinConns:        defaultDBMinConns,
		ConnMaxLifetime: defaultDBConnLifetime,
	}
	cfg.CLICKHOUSE = ClickHouseConfig{Database: "default"}
	cfg.REDIS = RedisConfig{TTL: defaultRedisTTL}
	cfg.NATS = NatsConfig{StreamName: "WEBHOOKS", ConsumerName: "webhook-delivery"}
	cfg.RABBITMQ = RabbitMQConfig{DeadQueue: "webhooks.dead-letter"}
	cfg.BANK = BankConfig{Timeout: defaultBankTimeout}
	cfg.METRICS = MetricsConfig{Enabled: true, Path: "/metrics", Namespace: "payment_gateway"}
	cfg.TRACING = TracingConfig{ServiceName: "payment-gateway"}

	for prefix, target := range map[string]interface{}{
		"APP":        &cfg.APP,
		"SERVER":     &cfg.SERVER,
		"POSTGRES":   &cfg.POSTGRES,
		"MONGO":      &cfg.MONGO,
		"CLICKHOUSE": &cfg.CLICKHOUSE,
		"REDIS":      &cfg.REDIS,
		"NATS":       &cfg.NATS,
		"RABBITMQ":   &cfg.RABBITMQ,
		"BANK":       &cfg.BANK,
		"METRICS":    &cfg.METRICS,
		"TRACING":    &cfg.TRACING,
	} {
		if err = envconfig.Process(prefix, target); err != nil {
			return
		}
	}

	if err = validator.New().Struct(cfg); err != nil {
		err = fmt.Errorf("config: %w", err)
		return
	}

	return cfg, nil
}
