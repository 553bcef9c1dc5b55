package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2"
)

// OllamaService implements LLMService for a self-hosted Ollama server.
// Ollama needs no credential.
type OllamaService struct {
	client    *api.Client
	modelName string
	logger    *slog.Logger
}

var _ LLMService = (*OllamaService)(nil)

// NewOllamaService creates an Ollama client for baseURL
func NewOllamaService(baseURL string, modelName string, logger *slog.Logger) (*OllamaService, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if modelName == "" {
		modelName = DefaultOllamaModel
	}
	// api.NewClient expects the server root, not the OpenAI-compatible /v1 path
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ollama URL %q: %w", baseURL, err)
	}
	return &OllamaService{
		client:    api.NewClient(u, &http.Client{Timeout: 5 * time.Minute}),
		modelName: modelName,
		logger:    logger,
	}, nil
}

func (s *OllamaService) ModelName() string {
	return s.modelName
}

// Complete runs a non-streaming generate request
func (s *OllamaService) Complete(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  s.modelName,
		Prompt: prompt,
		Stream: &stream,
	}

	var sb strings.Builder
	err := s.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		if resp.Done {
			s.logger.Debug("Ollama generation finished",
				"model", s.modelName,
				"prompt_tokens", resp.PromptEvalCount,
				"completion_tokens", resp.EvalCount)
		}
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return "", statusError(statusErr.StatusCode, statusErr.ErrorMessage)
		}
		return "", transportError(err)
	}
	return sb.String(), nil
}
