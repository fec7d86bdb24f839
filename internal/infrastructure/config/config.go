package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Redis (optional - leave empty to disable idempotency caching)
	RedisURL       string        `env:"REDIS_URL"       envDefault:""`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Snapshots (flat-text persistence collaborator)
	DataDir            string `env:"DATA_DIR"              envDefault:""`
	LedgerName         string `env:"LEDGER_NAME"           envDefault:"Marketplace Bank"`
	StoreName          string `env:"STORE_NAME"            envDefault:"Marketplace"`
	SnapshotOnShutdown bool   `env:"SNAPSHOT_ON_SHUTDOWN"  envDefault:"true"`

	// Event publisher
	PublisherBatchSize int           `env:"PUBLISHER_BATCH_SIZE" envDefault:"100"`
	PublisherInterval  time.Duration `env:"PUBLISHER_INTERVAL"   envDefault:"5s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
