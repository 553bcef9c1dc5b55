package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	LogLevel    slog.Level
	LogFile     string

	LLMProvider string
	ModelName   string
	OllamaURL   string

	ScenarioCount     int
	GenerationTimeout time.Duration

	StoreBackend string
	StorePath    string
	RedisURL     string
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:      getEnv("LOG_FILE", "cnv-trainer.log"),
		LLMProvider:  strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		ModelName:    getEnv("MODEL_NAME", ""),
		OllamaURL:    getEnv("OLLAMA_URL", "http://localhost:11434"),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "file")),
		StorePath:    getEnv("STORE_PATH", "data/cnv-store.json"),
		RedisURL:     getEnv("REDIS_URL", "localhost:6379"),
	}

	count, err := strconv.Atoi(getEnv("SCENARIO_COUNT", "10"))
	if err != nil || count <= 0 {
		return nil, fmt.Errorf("invalid SCENARIO_COUNT %q: must be a positive integer", os.Getenv("SCENARIO_COUNT"))
	}
	cfg.ScenarioCount = count

	timeout, err := time.ParseDuration(getEnv("GENERATION_TIMEOUT", "60s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid GENERATION_TIMEOUT %q: must be a positive duration", os.Getenv("GENERATION_TIMEOUT"))
	}
	cfg.GenerationTimeout = timeout

	switch cfg.LLMProvider {
	case "gemini", "openai", "anthropic", "venice", "ollama":
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER %q", cfg.LLMProvider)
	}

	switch cfg.StoreBackend {
	case "file", "redis", "memory":
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
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
