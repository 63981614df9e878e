package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port         string
	GinMode      string
	LogLevel     string
	AllowOrigins []string

	// Line OA (optional channel)
	LineChannelSecret      string
	LineChannelAccessToken string

	// Gemini AI
	GeminiAPIKey          string
	GeminiModel           string // templated diagnosis, SDK client
	GeminiProxyModel      string // raw prompt, REST client
	GeminiBaseURL         string
	GeminiAPIVersion      string
	GeminiMaxOutputTokens int
	GeminiTimeout         time.Duration

	// Thinking models spend part of this budget before writing any text.
	// Zero means GeminiMaxOutputTokens.
	GeminiProxyMaxOutputTokens int
}

func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv reads the environment without validating. Serverless entry points use it
// so a missing API key surfaces as a per-request error instead of a cold start failure.
// Non-positive or malformed numbers fall back to their defaults.
func FromEnv() *Config {
	maxTokens := getEnvPositiveInt("GEMINI_MAX_OUTPUT_TOKENS", 800)
	return &Config{
		Port:                   getEnv("PORT", "3000"),
		GinMode:                getEnv("GIN_MODE", "debug"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		AllowOrigins:           getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LineChannelSecret:      getEnv("LINE_CHANNEL_SECRET", ""),
		LineChannelAccessToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		GeminiModel:            getEnv("GEMINI_MODEL", "gemini-pro"),
		GeminiProxyModel:       getEnv("GEMINI_PROXY_MODEL", "gemini-2.5-pro"),
		GeminiBaseURL:          strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"), "/"),
		GeminiAPIVersion:       getEnv("GEMINI_API_VERSION", "v1beta"),
		GeminiMaxOutputTokens:  maxTokens,
		GeminiTimeout:          time.Duration(getEnvPositiveInt("GEMINI_TIMEOUT_SECONDS", 30)) * time.Second,

		GeminiProxyMaxOutputTokens: getEnvPositiveInt("GEMINI_PROXY_MAX_OUTPUT_TOKENS", maxTokens),
	}
}

func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("PORT must be a valid TCP port, got %q", c.Port)
	}
	if c.GeminiMaxOutputTokens <= 0 {
		return fmt.Errorf("GEMINI_MAX_OUTPUT_TOKENS must be positive")
	}
	if c.GeminiProxyMaxOutputTokens < 0 {
		return fmt.Errorf("GEMINI_PROXY_MAX_OUTPUT_TOKENS must not be negative")
	}
	if c.GeminiTimeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT_SECONDS must be positive")
	}
	if (c.LineChannelSecret == "") != (c.LineChannelAccessToken == "") {
		return fmt.Errorf("LINE_CHANNEL_SECRET and LINE_CHANNEL_ACCESS_TOKEN must be set together")
	}
	return nil
}

// HasGemini reports whether an API key is configured.
func (c *Config) HasGemini() bool {
	return c.GeminiAPIKey != ""
}

// HasLine reports whether the LINE channel is configured.
func (c *Config) HasLine() bool {
	return c.LineChannelSecret != "" && c.LineChannelAccessToken != ""
}

func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvPositiveInt(key string, defaultValue int) int {
	if n := getEnvInt(key, defaultValue); n > 0 {
		return n
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
