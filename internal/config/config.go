package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the full Logbook service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	NATS      NATSConfig      `yaml:"nats"`
	Redis     RedisConfig     `yaml:"redis"`
	Stream    StreamConfig    `yaml:"stream"`
	Readiness ReadinessConfig `yaml:"readiness"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Modules   ModulesConfig   `yaml:"modules"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	BaseURL string `yaml:"base_url"` // public origin, used to derive ws/wss
}

// DatabaseConfig configures the sqlite store.
type DatabaseConfig struct {
	Path string `yaml:"path"` // ":memory:" for ephemeral instances
}

// NATSConfig configures the internal change bus.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// RedisConfig configures the optional reference-data cache.
// An empty Addr disables Redis; the health document then reports the
// cache as disconnected without affecting readiness.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// StreamConfig configures the inventory WebSocket reconnect schedule.
type StreamConfig struct {
	Backoff        string `yaml:"backoff"` // fixed|linear|exponential
	InitialDelayMS int    `yaml:"initial_delay_ms"`
	MaxDelayMS     int    `yaml:"max_delay_ms"`
}

// ReadinessConfig configures the onboarding readiness poll loop.
type ReadinessConfig struct {
	Backoff        string `yaml:"backoff"`
	InitialDelayMS int    `yaml:"initial_delay_ms"`
	MaxDelayMS     int    `yaml:"max_delay_ms"`
	MaxAttempts    int    `yaml:"max_attempts"`
}

// ArchiveConfig configures the git-backed minutes archive.
type ArchiveConfig struct {
	Path    string `yaml:"path"`
	Author  string `yaml:"author,omitempty"`
	Email   string `yaml:"email,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

// ModulesConfig lists the functional areas enabled for this deployment.
// Hot-reloaded by the config watcher.
type ModulesConfig struct {
	Enabled []string `yaml:"enabled"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env/.env.local if present; missing files are not an error.
	_ = godotenv.Load(".env", ".env.local")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{}
	example.applyDefaults()
	example.Redis.Addr = "localhost:6379"
	example.Archive.Path = "./minutes-archive"
	example.Archive.Enabled = true

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
