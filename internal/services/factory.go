package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Supported provider names for LLM_PROVIDER
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderVenice    = "venice"
	ProviderOllama    = "ollama"
)

// ProviderConfig selects and parameterises an LLM backend
type ProviderConfig struct {
	Provider  string
	ModelName string
	OllamaURL string
}

// NewLLMService builds an explicit client for provider bound to credential.
// A blank credential is ErrAuthorization for every provider except Ollama.
func NewLLMService(ctx context.Context, cfg ProviderConfig, credential string, logger *slog.Logger) (LLMService, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderGemini
	}
	credential = strings.TrimSpace(credential)
	if credential == "" && provider != ProviderOllama {
		return nil, fmt.Errorf("%w: no credential for provider %s", ErrAuthorization, provider)
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiService(ctx, credential, cfg.ModelName, logger)
	case ProviderOpenAI:
		return NewOpenAIService(credential, cfg.ModelName, ""), nil
	case ProviderAnthropic:
		return NewAnthropicService(credential, cfg.ModelName, logger), nil
	case ProviderVenice:
		return NewVeniceService(credential, cfg.ModelName), nil
	case ProviderOllama:
		return NewOllamaService(cfg.OllamaURL, cfg.ModelName, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// Factory adapts NewLLMService to a closure over a fixed ProviderConfig
type Factory func(ctx context.Context, credential string) (LLMService, error)

// NewFactory returns a Factory for cfg
func NewFactory(cfg ProviderConfig, logger *slog.Logger) Factory {
	return func(ctx context.Context, credential string) (LLMService, error) {
		return NewLLMService(ctx, cfg, credential, logger)
	}
}
