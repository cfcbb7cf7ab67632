package config

import (
	"time"

	redisclient "github.com/flowsend/aegis/internal/infra/redis"
	"github.com/flowsend/aegis/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Logging   LoggingConfig      `yaml:"logging"`
	Database  postgres.Config    `yaml:"database"`
	Redis     redisclient.Config `yaml:"redis"`
	Retention RetentionConfig    `yaml:"retention"`
}

// ServerConfig holds ops HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// RetentionConfig holds retention sweeper settings.
type RetentionConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"` // 0 = default (1h)
	Enabled       bool          `yaml:"enabled"`
}
