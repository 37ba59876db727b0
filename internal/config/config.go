// Package config loads the environment driven configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the generation service.
type Config struct {
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8093"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"` // json or console
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Generative API
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	TextModel     string        `env:"GEMINI_TEXT_MODEL" envDefault:"gemini-2.5-pro"`
	FallbackModel string        `env:"GEMINI_FALLBACK_MODEL" envDefault:"gemini-2.5-flash"`
	ImageModel    string        `env:"GEMINI_IMAGE_MODEL" envDefault:"imagen-3.0-generate-002"`
	GeminiTimeout time.Duration `env:"GEMINI_TIMEOUT" envDefault:"120s"`

	// Retry tuning
	TextRetryMax          int           `env:"TEXT_RETRY_MAX" envDefault:"3"`
	TextRetryInitialDelay time.Duration `env:"TEXT_RETRY_INITIAL_DELAY" envDefault:"2s"`
	ImageRetryMax         int           `env:"IMAGE_RETRY_MAX" envDefault:"1"`
	ImageRetryInitial     time.Duration `env:"IMAGE_RETRY_INITIAL_DELAY" envDefault:"8s"`

	// Provider rate limiting (requests per minute across all calls)
	ProviderRPM int `env:"PROVIDER_RPM" envDefault:"12"`

	// Search (internal links + SERP enrichment); optional
	SerperAPIKey  string        `env:"SERPER_API_KEY"`
	SearchTimeout time.Duration `env:"SEARCH_TIMEOUT" envDefault:"15s"`

	// Storage
	RedisURL string `env:"REDIS_URL"`
	// StorageBudgetBytes caps the serialized article collection before
	// degradation kicks in. Zero disables degradation.
	StorageBudgetBytes int `env:"STORAGE_BUDGET_BYTES" envDefault:"4194304"`

	// WordPress publish timeout
	PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"60s"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if strings.TrimSpace(cfg.TextModel) == "" || strings.TrimSpace(cfg.ImageModel) == "" {
		return nil, fmt.Errorf("GEMINI_TEXT_MODEL and GEMINI_IMAGE_MODEL must not be empty")
	}
	if cfg.ProviderRPM <= 0 {
		cfg.ProviderRPM = 12
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
