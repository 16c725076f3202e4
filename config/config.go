// Package config loads the rra configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/etnz/realreturn"
	"github.com/etnz/realreturn/eurostat"
	"github.com/etnz/realreturn/frankfurter"
	"github.com/etnz/realreturn/fred"
)

// Config holds all application configuration.
type Config struct {
	FRED struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"fred"`
	Eurostat struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"eurostat"`
	Frankfurter struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"frankfurter"`
	HTTP struct {
		Timeout           time.Duration `yaml:"timeout"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
	} `yaml:"http"`
	Cache struct {
		Dir string `yaml:"dir"`
	} `yaml:"cache"`
	Defaults struct {
		Base       string   `yaml:"base"`
		Currencies []string `yaml:"currencies"`
	} `yaml:"defaults"`
	LogLevel string `yaml:"log_level"`
}

// DefaultPath returns ~/.realreturn/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".realreturn", "config.yaml")
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
//
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// Environment variable overrides
	if v := os.Getenv(fred.APIKeyEnv); v != "" {
		cfg.FRED.APIKey = v
	}
	if v := os.Getenv("REALRETURN_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("REALRETURN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// Defaults
	if cfg.FRED.BaseURL == "" {
		cfg.FRED.BaseURL = fred.DefaultBaseURL
	}
	if cfg.Eurostat.BaseURL == "" {
		cfg.Eurostat.BaseURL = eurostat.DefaultBaseURL
	}
	if cfg.Frankfurter.BaseURL == "" {
		cfg.Frankfurter.BaseURL = frankfurter.DefaultBaseURL
	}
	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = realreturn.DefaultTimeout
	}
	if cfg.HTTP.RequestsPerSecond == 0 {
		cfg.HTTP.RequestsPerSecond = 5
	}
	if cfg.Defaults.Base == "" {
		cfg.Defaults.Base = "USD"
	}
	if len(cfg.Defaults.Currencies) == 0 {
		cfg.Defaults.Currencies = realreturn.Currencies()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = zerolog.LevelWarnValue
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive")
	}
	if c.HTTP.RequestsPerSecond < 0 {
		return fmt.Errorf("http.requests_per_second must not be negative")
	}
	if _, err := realreturn.ParseCurrency(c.Defaults.Base); err != nil {
		return fmt.Errorf("defaults.base: %w", err)
	}
	for _, code := range c.Defaults.Currencies {
		if _, err := realreturn.ParseCurrency(code); err != nil {
			return fmt.Errorf("defaults.currencies: %w", err)
		}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// ClientOptions returns the provider HTTP client options.
func (c *Config) ClientOptions() realreturn.ClientOptions {
	return realreturn.ClientOptions{
		Timeout:           c.HTTP.Timeout,
		RequestsPerSecond: c.HTTP.RequestsPerSecond,
	}
}
