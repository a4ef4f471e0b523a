// Package config loads runtime configuration from the environment, with
// optional .env file support for local development.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/llmadventure/llmadventure/internal/errors"
)

// Config holds every runtime tunable
type Config struct {
	// GeminiAPIKey authenticates against the generation service
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// GeminiModel selects the model
	GeminiModel string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`

	// MaxConcurrent bounds in-flight generation requests
	MaxConcurrent int `env:"GENERATION_MAX_CONCURRENT" envDefault:"5"`

	// MaxRetries is the retry budget per generation request
	MaxRetries int `env:"GENERATION_MAX_RETRIES" envDefault:"3"`

	// BackoffBase is the initial retry backoff interval
	BackoffBase time.Duration `env:"GENERATION_BACKOFF_BASE" envDefault:"500ms"`

	// RequestTimeout bounds each generation attempt
	RequestTimeout time.Duration `env:"GENERATION_REQUEST_TIMEOUT" envDefault:"15s"`

	// RedisAddr enables the Redis snapshot repository when set
	RedisAddr string `env:"REDIS_ADDR"`

	// SaveDir is where the file snapshot repository keeps save slots
	SaveDir string `env:"SAVE_DIR" envDefault:"saves"`
}

// Load reads configuration from .env (if present) and the environment
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment")
	}

	return &cfg, nil
}

// Validate checks fields needed for live generation. The engine still runs
// without a key, on fallback content only.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.GeminiAPIKey == "" {
		vb.RequiredField("GeminiAPIKey")
	}
	if c.GeminiModel == "" {
		vb.RequiredField("GeminiModel")
	}

	return vb.Build()
}
