package services

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenAIModel       = openai.GPT4oMini
	DefaultOpenAITemperature = float32(0.7)
)

// OpenAIService implements LLMService using the chat completions API
type OpenAIService struct {
	client    *openai.Client
	modelName string
}

var _ LLMService = (*OpenAIService)(nil)

// NewOpenAIService creates an OpenAI client. baseURL may be empty to use the
// public endpoint, or point at any OpenAI-compatible server.
func NewOpenAIService(apiKey string, modelName string, baseURL string) *OpenAIService {
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIService{
		client:    openai.NewClientWithConfig(cfg),
		modelName: modelName,
	}
}

func (o *OpenAIService) ModelName() string {
	return o.modelName
}

// Complete sends prompt as a single user message
func (o *OpenAIService) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: DefaultOpenAITemperature,
	})
	if err != nil {
		return "", openAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	if refusal := resp.Choices[0].Message.Refusal; refusal != "" {
		return "", fmt.Errorf("%w: model refused to respond: %s", ErrServiceUnavailable, refusal)
	}
	return resp.Choices[0].Message.Content, nil
}

func openAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, reqErr.Error())
	}
	return transportError(err)
}
