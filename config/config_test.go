package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "GIN_MODE", "GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_PROXY_MODEL",
		"GEMINI_BASE_URL", "GEMINI_API_VERSION", "GEMINI_MAX_OUTPUT_TOKENS",
		"GEMINI_TIMEOUT_SECONDS", "GEMINI_PROXY_MAX_OUTPUT_TOKENS", "CORS_ALLOWED_ORIGINS", "LINE_CHANNEL_SECRET",
		"LINE_CHANNEL_ACCESS_TOKEN",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "gemini-pro", cfg.GeminiModel)
	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiProxyModel)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.GeminiBaseURL)
	assert.Equal(t, "v1beta", cfg.GeminiAPIVersion)
	assert.Equal(t, 800, cfg.GeminiMaxOutputTokens)
	assert.Equal(t, 800, cfg.GeminiProxyMaxOutputTokens)
	assert.Equal(t, 30*time.Second, cfg.GeminiTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.False(t, cfg.HasGemini())
	assert.False(t, cfg.HasLine())
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("GEMINI_BASE_URL", "http://localhost:9999/")
	t.Setenv("GEMINI_MAX_OUTPUT_TOKENS", "256")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("GIN_MODE", "release")

	cfg := FromEnv()

	assert.True(t, cfg.HasGemini())
	assert.True(t, cfg.IsRelease())
	assert.Equal(t, "http://localhost:9999", cfg.GeminiBaseURL)
	assert.Equal(t, 256, cfg.GeminiMaxOutputTokens)
	assert.Equal(t, 256, cfg.GeminiProxyMaxOutputTokens)

	t.Setenv("GEMINI_PROXY_MAX_OUTPUT_TOKENS", "4096")
	assert.Equal(t, 4096, FromEnv().GeminiProxyMaxOutputTokens)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Port: "3000", GeminiMaxOutputTokens: 800, GeminiTimeout: time.Second}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Port = "abc"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.GeminiMaxOutputTokens = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.GeminiTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.LineChannelSecret = "secret"
	assert.Error(t, cfg.Validate())

	cfg.LineChannelAccessToken = "token"
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.HasLine())
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT_VAR", "123")
	assert.Equal(t, 123, getEnvInt("TEST_INT_VAR", 0))

	t.Setenv("TEST_INT_VAR", "invalid")
	assert.Equal(t, 10, getEnvInt("TEST_INT_VAR", 10))
}

func TestFromEnvClampsNonPositiveNumbers(t *testing.T) {
	t.Setenv("GEMINI_TIMEOUT_SECONDS", "0")
	t.Setenv("GEMINI_MAX_OUTPUT_TOKENS", "-5")
	t.Setenv("GEMINI_PROXY_MAX_OUTPUT_TOKENS", "muchos")

	cfg := FromEnv()

	assert.Equal(t, 30*time.Second, cfg.GeminiTimeout)
	assert.Equal(t, 800, cfg.GeminiMaxOutputTokens)
	assert.Equal(t, 800, cfg.GeminiProxyMaxOutputTokens)
	require.NoError(t, cfg.Validate())
}
