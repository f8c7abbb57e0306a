// Package config loads the copilot configuration from config/copilot.yaml,
// .env and a small set of environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultPath is where the server looks for its config file.
const DefaultPath = "config/copilot.yaml"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Upload    UploadConfig    `yaml:"upload"`
	Prompts   PromptsConfig   `yaml:"prompts"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LLMConfig selects the chat provider. Agents overrides the provider per task
// (screener, memo, chat, upload), the same shape as the old models.yaml.
type LLMConfig struct {
	ActiveProvider string                 `yaml:"active_provider" validate:"required,oneof=openai deepseek qwen gemini claude mock"`
	Model          string                 `yaml:"model"`
	Temperature    float64                `yaml:"temperature" validate:"gte=0,lte=1"`
	MaxTokens      int                    `yaml:"max_tokens" validate:"gte=256,lte=4096"`
	Timeout        time.Duration          `yaml:"timeout" validate:"gt=0"`
	HistoryPairs   int                    `yaml:"history_pairs" validate:"gte=1"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Description string `yaml:"description"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gt=0"`
	Burst             int     `yaml:"burst" validate:"gte=1"`
}

// DatabaseConfig is optional; an empty URL keeps sessions in memory.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

type UploadConfig struct {
	MaxBytes      int64 `yaml:"max_bytes" validate:"gt=0"`
	ExcerptLength int   `yaml:"excerpt_length" validate:"gt=0"`
}

// PromptsConfig points at an optional directory of prompt overrides.
type PromptsConfig struct {
	Dir string `yaml:"dir"`
}

// Default mirrors the calculator UI defaults: gpt-4o-mini, temperature 0.2,
// 1400 tokens, 18 remembered question/answer pairs, 8000-character excerpts.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		LLM: LLMConfig{
			ActiveProvider: "openai",
			Model:          "gpt-4o-mini",
			Temperature:    0.2,
			MaxTokens:      1400,
			Timeout:        120 * time.Second,
			HistoryPairs:   18,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Upload: UploadConfig{
			MaxBytes:      20 << 20,
			ExcerptLength: 8000,
		},
	}
}

// Load reads .env (if present), then the YAML file at path on top of the
// defaults, then env overrides, and validates the result.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("COPILOT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("COPILOT_PROVIDER"); v != "" {
		c.LLM.ActiveProvider = v
	}
	if v := os.Getenv("COPILOT_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("COPILOT_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid COPILOT_TEMPERATURE %q: %w", v, err)
		}
		c.LLM.Temperature = t
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("COPILOT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks field ranges and that every agent override names a known provider.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for task, agent := range c.LLM.Agents {
		if agent.Provider == "" {
			continue
		}
		switch agent.Provider {
		case "openai", "deepseek", "qwen", "gemini", "claude", "mock":
		default:
			return fmt.Errorf("invalid config: agent %q uses unknown provider %q", task, agent.Provider)
		}
	}
	return nil
}
