package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	clinscribeDir := filepath.Join(configDir, "clinscribe")
	if err := os.MkdirAll(clinscribeDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(clinscribeDir, "config.toml"), nil
}

// Load reads the config file, creating it with defaults on first run.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("config: no config file found at %s, creating with defaults", configPath)
		if err := Save(DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	return LoadFrom(configPath)
}

// LoadFrom reads a config file at an explicit path.
func LoadFrom(configPath string) (*Config, error) {
	log.Printf("config: loading configuration from %s", configPath)
	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if config.Providers == nil {
		config.Providers = make(map[string]ProviderConfig)
	}
	config.applyDefaults()

	log.Printf("config: configuration loaded successfully")
	return &config, nil
}

// applyDefaults fills zero values that have sensible defaults so a sparse
// config file still produces a usable configuration.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if len(c.Transcription.Providers) == 0 {
		c.Transcription.Providers = def.Transcription.Providers
	}
	if c.Transcription.ExpectedSpeakers == 0 {
		c.Transcription.ExpectedSpeakers = def.Transcription.ExpectedSpeakers
	}
	if c.Polling.Interval == 0 {
		c.Polling.Interval = def.Polling.Interval
	}
	if c.Polling.Timeout == 0 {
		c.Polling.Timeout = def.Polling.Timeout
	}
	if c.Report.Width == 0 {
		c.Report.Width = def.Report.Width
	}
	if len(c.Watch.Extensions) == 0 {
		c.Watch.Extensions = def.Watch.Extensions
	}
}

// Save writes the configuration to the default config path.
func Save(c *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
