package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Transport names accepted in [BackendConfig].
const (
	TransportNone      = "none"
	TransportWebSocket = "websocket"
	TransportRedis     = "redis"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Backend  BackendConfig  `toml:"backend"`
	UI       UIConfig       `toml:"ui"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// BackendConfig selects and configures the message channel to the backend process.
type BackendConfig struct {
	Transport     string  `toml:"transport"`
	URL           string  `toml:"url"`
	ChannelPrefix string  `toml:"channel_prefix"`
	SendRate      float64 `toml:"send_rate"`
	SendBurst     int     `toml:"send_burst"`
	QueueSize     int     `toml:"queue_size"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	NotificationMS int    `toml:"notification_ms"`
	LogPath        string `toml:"log_path"`
}

// NotificationDuration returns how long a transient notification stays visible.
func (c UIConfig) NotificationDuration() time.Duration {
	return time.Duration(c.NotificationMS) * time.Millisecond
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Backend.Transport {
	case TransportNone, "":
	case TransportWebSocket, TransportRedis:
		if c.Backend.URL == "" {
			return fmt.Errorf("%w: backend.url is required for transport %q", ErrInvalidConfig, c.Backend.Transport)
		}
	default:
		return fmt.Errorf("%w: unknown backend.transport %q", ErrInvalidConfig, c.Backend.Transport)
	}

	if c.Backend.SendRate <= 0 {
		return fmt.Errorf("%w: backend.send_rate must be positive", ErrInvalidConfig)
	}
	if c.Backend.SendBurst <= 0 {
		return fmt.Errorf("%w: backend.send_burst must be positive", ErrInvalidConfig)
	}
	if c.Backend.QueueSize <= 0 {
		return fmt.Errorf("%w: backend.queue_size must be positive", ErrInvalidConfig)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}

	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
