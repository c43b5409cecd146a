package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Supported LLM providers.
const (
	ProviderOllama    = "ollama"
	ProviderVenice    = "venice"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	LogFile     string

	LLMProvider     string
	ModelName       string
	OllamaURL       string
	VeniceAPIKey    string
	AnthropicAPIKey string

	// RedisURL enables event broadcasting when set.
	RedisURL string

	GenerationTimeout time.Duration
	ModelLoadTimeout  time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:         os.Getenv("LOG_FILE"),
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderOllama)),
		ModelName:       getEnv("MODEL_NAME", "gemma3:270m"),
		OllamaURL:       strings.TrimRight(getEnv("OLLAMA_URL", "http://localhost:11434"), "/"),
		VeniceAPIKey:    os.Getenv("VENICE_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		RedisURL:        os.Getenv("REDIS_URL"),
	}

	var err error
	if cfg.GenerationTimeout, err = getDuration("GENERATION_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ModelLoadTimeout, err = getDuration("MODEL_LOAD_TIMEOUT", 10*time.Minute); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case ProviderOllama:
	case ProviderVenice:
		if c.VeniceAPIKey == "" {
			return fmt.Errorf("VENICE_API_KEY is required when using the venice provider")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when using the anthropic provider")
		}
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q, supported: %s, %s, %s",
			c.LLMProvider, ProviderOllama, ProviderVenice, ProviderAnthropic)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, value)
	}
	return d, nil
}
