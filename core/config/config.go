package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sethvargo/go-envconfig"
)

// Config holds the configuration shared by the relay and storage services
type Config struct {
	RelayAddr   string `json:"relay_addr"`
	RelayPort   int    `json:"relay_port"`
	StorageAddr string `json:"storage_addr"`
	StoragePort int    `json:"storage_port"`
	StoragePath string `json:"storage_path"`
	LogPath     string `json:"log_path"`
	LogLevel    string `json:"log_level"`

	// Pacing between consecutive webhook deliveries, in milliseconds.
	// Zero disables pacing.
	DeliveryPacingMillis int `json:"delivery_pacing_millis"`

	// Deploy-time values, supplied through the environment so that secrets
	// never end up in the config file on disk.
	Env EnvConfig `json:"-"`
}

// EnvConfig holds the environment-provided part of the configuration
type EnvConfig struct {
	WebhookURL        string `env:"WEBHOOK_URL"`
	StorageServiceURL string `env:"STORAGE_SERVICE_URL,default=http://localhost:8091"`
	ChannelID         string `env:"DISCORD_CHANNEL_ID"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {

	dataDir := "."

	homeDir, err := os.UserHomeDir()
	if err == nil && homeDir != "" {
		dataDir = filepath.Join(homeDir, "nemesis")

		// Ensure the directory exists
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			dataDir = "."
		}
	}

	return &Config{
		RelayAddr:            "0.0.0.0",
		RelayPort:            8090,
		StorageAddr:          "127.0.0.1",
		StoragePort:          8091,
		StoragePath:          filepath.Join(dataDir, "configs"),
		LogPath:              "logs",
		LogLevel:             "info",
		DeliveryPacingMillis: 0,
	}
}

// LoadConfig loads the configuration from a JSON file and applies
// environment overrides on top of it
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		// If the file doesn't exist, we can proceed with the default config
	} else {
		defer file.Close()

		decoder := json.NewDecoder(file)
		if err := decoder.Decode(config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	if err := envconfig.Process(context.Background(), &config.Env); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.RelayPort <= 0 || c.RelayPort > 65535 {
		return fmt.Errorf("invalid relay port: %d", c.RelayPort)
	}
	if c.StoragePort <= 0 || c.StoragePort > 65535 {
		return fmt.Errorf("invalid storage port: %d", c.StoragePort)
	}
	if c.DeliveryPacingMillis < 0 {
		return fmt.Errorf("invalid delivery pacing: %d", c.DeliveryPacingMillis)
	}
	return nil
}

// SaveConfig saves the configuration to a JSON file
func (c *Config) SaveConfig(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config file: %w", err)
	}

	return nil
}
