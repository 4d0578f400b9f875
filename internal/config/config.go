// Package config loads the application's configuration: the optional YAML
// app config with environment overrides, the JSON ticker list, and the JSON
// display settings.
package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// App config (YAML)
// ---------------------------------------------------------------------------

// Config is the top-level application configuration.
type Config struct {
	Finnhub Finnhub `yaml:"finnhub"`
	Files   Files   `yaml:"files"`
	Logging Logging `yaml:"logging"`
	Daemon  Daemon  `yaml:"daemon"`
}

// Finnhub holds the credential and endpoints for the data provider. The API
// key normally arrives via the FINNHUB_API_KEY environment variable.
type Finnhub struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	StreamURL string `yaml:"stream_url"`
}

// Files holds the paths of the user-facing data files.
type Files struct {
	Tickers  string `yaml:"tickers"`
	Settings string `yaml:"settings"`
	Cache    string `yaml:"cache"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Daemon holds parameters for the cache-refresh daemon.
type Daemon struct {
	RateLimitPerMin int `yaml:"rate_limit_per_min"`
}

// Default returns the configuration used when no YAML file exists.
func Default() *Config {
	return &Config{
		Files: Files{
			Tickers:  "tickers.json",
			Settings: "settings.json",
			Cache:    "cache.json",
		},
		Logging: Logging{Level: "info"},
		Daemon:  Daemon{RateLimitPerMin: 60},
	}
}

// Load reads the YAML configuration file at the given path, parses it over
// the defaults, and applies environment variable overrides. A missing file
// is not an error; the defaults (plus overrides) are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Optional file.
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		cfg.Finnhub.APIKey = v
	}
	if v := os.Getenv("FINNHUB_BASE_URL"); v != "" {
		cfg.Finnhub.BaseURL = v
	}
	if v := os.Getenv("FINNHUB_STREAM_URL"); v != "" {
		cfg.Finnhub.StreamURL = v
	}
	if v := os.Getenv("CACHE_PATH"); v != "" {
		cfg.Files.Cache = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
