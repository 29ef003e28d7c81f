package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiredAndDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "smartplay")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
	t.Setenv("BCRYPT_COST", "10")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 7, cfg.RefreshTTLDays)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 15000, cfg.AI.MaxContextChars)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoadAIConfig_Defaults(t *testing.T) {
	c := LoadAIConfig()
	assert.InDelta(t, 0.3, c.Temperature, 1e-9)
	assert.Equal(t, 150, c.MaxTokens)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, 15000, c.MaxContextChars)
}

func TestLoadAIConfig_Overrides(t *testing.T) {
	t.Setenv("MAX_CONTEXT_CHARS", "500")
	t.Setenv("LLM_MAX_TOKENS", "64")
	t.Setenv("AI_TIMEOUT", "5s")

	c := LoadAIConfig()
	assert.Equal(t, 500, c.MaxContextChars)
	assert.Equal(t, 64, c.MaxTokens)
	assert.Equal(t, 5*time.Second, c.Timeout)
}

func TestLoadTranscriptConfig_TrimsBaseURL(t *testing.T) {
	t.Setenv("YOUTUBE_BASE_URL", "http://127.0.0.1:9999/")
	c := LoadTranscriptConfig()
	assert.Equal(t, "http://127.0.0.1:9999", c.BaseURL)
	assert.Equal(t, 20*time.Second, c.Timeout)
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	c := LoadRateLimitConfig()
	require.True(t, c.Enabled)
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 10*time.Second, c.TTL)
}

func TestEnvBool(t *testing.T) {
	t.Setenv("FLAG_ON", "yes")
	t.Setenv("FLAG_OFF", "0")
	t.Setenv("FLAG_JUNK", "maybe")

	assert.True(t, envBool("FLAG_ON", false))
	assert.False(t, envBool("FLAG_OFF", true))
	assert.True(t, envBool("FLAG_JUNK", true))
	assert.False(t, envBool("FLAG_MISSING", false))
}
