// Package config loads sheetinfer settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvAPIKey       = "SHEETINFER_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvBaseURL      = "SHEETINFER_BASE_URL"
	EnvModel        = "SHEETINFER_MODEL"
)

// Config is the full configuration.
type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// LLMConfig configures the completion service.
type LLMConfig struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	// APIKey is usually left empty and read from APIKeyEnv instead.
	APIKey         string  `toml:"api_key"`
	APIKeyEnv      string  `toml:"api_key_env"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxRetries     int     `toml:"max_retries"`
	Temperature    float64 `toml:"temperature"`
}

// Timeout returns the request timeout as a duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PipelineConfig holds the defaults of a cleaning run.
type PipelineConfig struct {
	// Concurrency bounds how many units run at once; 0 means no bound.
	Concurrency int    `toml:"concurrency"`
	Consolidate bool   `toml:"consolidate"`
	PrintAreas  bool   `toml:"print_areas"`
	Background  string `toml:"background"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// MaxUploadMB bounds the size of uploaded workbooks.
	MaxUploadMB int64 `toml:"max_upload_mb"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL:        "https://api.openai.com",
			Model:          "gpt-4o-mini",
			APIKeyEnv:      EnvAPIKey,
			TimeoutSeconds: 300,
			MaxRetries:     2,
		},
		Pipeline: PipelineConfig{
			Concurrency: 4,
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			MaxUploadMB: 32,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults and then applies the environment. An
// empty path, or a path that does not exist, yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment. The API key comes from
// the variable named by LLM.APIKeyEnv, then SHEETINFER_API_KEY, then
// OPENAI_API_KEY.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if c.LLM.APIKey == "" {
		for _, name := range []string{c.LLM.APIKeyEnv, EnvAPIKey, EnvOpenAIAPIKey} {
			if name == "" {
				continue
			}
			if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
				c.LLM.APIKey = strings.TrimSpace(v)
				break
			}
		}
	}
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.LLM.BaseURL = v
	}
	if v, ok := lookup(EnvModel); ok && v != "" {
		c.LLM.Model = v
	}
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	if c.Pipeline.Concurrency < 0 {
		return fmt.Errorf("pipeline.concurrency must not be negative, got %d", c.Pipeline.Concurrency)
	}
	if c.LLM.TimeoutSeconds < 0 {
		return fmt.Errorf("llm.timeout_seconds must not be negative")
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative")
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be at least 1")
	}
	return nil
}
