package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmadventure/llmadventure/internal/config"
	"github.com/llmadventure/llmadventure/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, 5, cfg.MaxConcurrent)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.BackoffBase)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "saves", cfg.SaveDir)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")
	t.Setenv("GENERATION_MAX_CONCURRENT", "2")
	t.Setenv("GENERATION_BACKOFF_BASE", "100ms")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-1.5-pro", cfg.GeminiModel)
	assert.Equal(t, 2, cfg.MaxConcurrent)
	assert.Equal(t, 100*time.Millisecond, cfg.BackoffBase)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestValidateRequiresKey(t *testing.T) {
	cfg := &config.Config{GeminiModel: "gemini-1.5-flash"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}
