// Package config loads gateway configuration from a YAML file, filling in
// defaults for anything the file leaves unset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for the YAML file.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	// PublicBaseURL is the externally visible origin, used in the
	// protected-resource metadata.
	PublicBaseURL string `yaml:"public_base_url"`
	DocsURL       string `yaml:"docs_url"`
	LogLevel      string `yaml:"log_level"`
	LogJSON       bool   `yaml:"log_json"`

	// APITokens are the static bearer tokens accepted on authenticated MCP
	// methods, mapped to the account they act as.
	APITokens map[string]Principal `yaml:"api_tokens"`

	Stream    StreamConfig    `yaml:"stream"`
	Providers ProviderConfig  `yaml:"providers"`
}

// Principal identifies the account a token resolves to.
type Principal struct {
	UserID string `yaml:"user_id"`
	Email  string `yaml:"email"`
}

// StreamConfig tunes the SSE relay.
type StreamConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	WorkerPool int           `yaml:"worker_pool"`
}

// ProviderConfig carries per-vendor overrides.
type ProviderConfig struct {
	DeepSeekBaseURL string `yaml:"deepseek_base_url"`
	DeepSeekAPIKey  string `yaml:"deepseek_api_key"`
	MistralBaseURL  string `yaml:"mistral_base_url"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:    ":8080",
		PublicBaseURL: "https://api.chartdb.in",
		DocsURL:       "https://chartdb.in/docs/mcp",
		LogLevel:      "info",
		Stream: StreamConfig{
			Timeout:    5 * time.Minute,
			WorkerPool: 32,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; the defaults stand.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Restore defaults the file zeroed out.
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = Default().ListenAddr
	}
	if cfg.Stream.Timeout <= 0 {
		cfg.Stream.Timeout = Default().Stream.Timeout
	}
	if cfg.Stream.WorkerPool <= 0 {
		cfg.Stream.WorkerPool = Default().Stream.WorkerPool
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = Default().LogLevel
	}
	return cfg, nil
}

// Save writes the configuration back to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
