package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGeminiTemperature = float32(0.7)
)

// GeminiService implements LLMService for Google Gemini
type GeminiService struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

var _ LLMService = (*GeminiService)(nil)

// NewGeminiService creates a Gemini API client bound to apiKey
func NewGeminiService(ctx context.Context, apiKey string, modelName string, logger *slog.Logger) (*GeminiService, error) {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %v", ErrAuthorization, err)
	}
	return &GeminiService{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

func (g *GeminiService) ModelName() string {
	return g.modelName
}

// Complete generates content for a single text prompt
func (g *GeminiService) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := DefaultGeminiTemperature
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return "", geminiError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		g.logger.Warn("Gemini returned no candidates", "model", g.modelName)
		return "", nil
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates[:1] {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil {
				sb.WriteString(part.Text)
			}
		}
	}
	return sb.String(), nil
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.Code, apiErr.Status+": "+apiErr.Message)
	}
	return transportError(err)
}
