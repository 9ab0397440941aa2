package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/tahp/LinkManager/internal/logger"
)

// Local backend names accepted by LM_LOCAL_BACKEND.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all process configuration.
type Config struct {
	Storage StorageConfig
	Log     LogConfig
	Server  ServerConfig
}

// StorageConfig selects and locates the persistence backend.
type StorageConfig struct {
	KVURL               string        `envconfig:"KV_URL"`
	DataDir             string        `envconfig:"LM_DATA_DIR"`
	LocalBackend        string        `envconfig:"LM_LOCAL_BACKEND" default:"file"`
	SQLitePath          string        `envconfig:"LM_SQLITE_PATH"`
	RedisConnectTimeout time.Duration `envconfig:"LM_REDIS_CONNECT_TIMEOUT" default:"5s"`
	RedisPingTimeout    time.Duration `envconfig:"LM_REDIS_PING_TIMEOUT" default:"2s"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.LocalBackend != BackendFile && c.LocalBackend != BackendSQLite {
		return fmt.Errorf("invalid local backend: %s (must be one of: file, sqlite)", c.LocalBackend)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if c.RedisConnectTimeout <= 0 {
		return fmt.Errorf("redis connect timeout must be positive")
	}
	if c.RedisPingTimeout <= 0 {
		return fmt.Errorf("redis ping timeout must be positive")
	}
	return nil
}

// LogConfig controls the logger. An empty level lets each command pick
// its own default.
type LogConfig struct {
	Level  string `envconfig:"LM_LOG_LEVEL"`
	Pretty bool   `envconfig:"LM_PRETTY_LOG"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	if c.Level != "" && !logger.ValidLevel(c.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.Level)
	}
	return nil
}

// LevelOr returns the configured level, or def when none is set.
func (c *LogConfig) LevelOr(def string) string {
	if c.Level == "" {
		return def
	}
	return c.Level
}

// ServerConfig holds HTTP server configuration for the serve command.
type ServerConfig struct {
	ListenAddr      string        `envconfig:"LM_LISTEN_ADDR" default:"127.0.0.1:8080"`
	ShutdownTimeout time.Duration `envconfig:"LM_SHUTDOWN_TIMEOUT" default:"10s"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

// DefaultDataDir returns the data directory under the platform's config
// directory.
func DefaultDataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "linkmanager"), nil
}

// Load loads configuration from environment variables only.
// .env loading happens in main.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", &cfg.Storage); err != nil {
		return nil, fmt.Errorf("failed to load Storage config: %w", err)
	}
	if cfg.Storage.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data directory: %w", err)
		}
		cfg.Storage.DataDir = dir
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.Storage.DataDir, "links.db")
	}
	if err := cfg.Storage.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Storage config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to load Log config: %w", err)
	}
	if err := cfg.Log.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Log config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load Server config: %w", err)
	}
	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Server config: %w", err)
	}

	return cfg, nil
}
