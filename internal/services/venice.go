package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwebster45206/cnv-trainer/pkg/chat"
)

const (
	veniceBaseURL = "https://api.venice.ai/api/v1"

	DefaultVeniceModel       = "llama-3.3-70b"
	DefaultVeniceTemperature = 0.7
	DefaultVeniceMaxTokens   = 4096
)

// VeniceService implements LLMService for Venice AI
type VeniceService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
}

var _ LLMService = (*VeniceService)(nil)

type VeniceParameters struct {
	IncludeVeniceSystemPrompt bool   `json:"include_venice_system_prompt"`
	EnableWebSearch           string `json:"enable_web_search"`
}

// VeniceChatRequest represents the request structure for Venice AI chat completions
type VeniceChatRequest struct {
	Model            string             `json:"model"`
	Messages         []chat.ChatMessage `json:"messages"`
	Temperature      float64            `json:"temperature,omitempty"`
	MaxTokens        int                `json:"max_tokens,omitempty"`
	Stream           bool               `json:"stream"`
	VeniceParameters VeniceParameters   `json:"venice_parameters"`
}

// VeniceChatChoice represents a single choice in the Venice AI response
type VeniceChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// VeniceChatResponse represents the response structure for Venice AI chat completions
type VeniceChatResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []VeniceChatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewVeniceService creates a new Venice AI service
func NewVeniceService(apiKey string, modelName string) *VeniceService {
	if modelName == "" {
		modelName = DefaultVeniceModel
	}
	return &VeniceService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   veniceBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (v *VeniceService) ModelName() string {
	return v.modelName
}

// Complete makes a chat completion request to Venice AI
func (v *VeniceService) Complete(ctx context.Context, prompt string) (string, error) {
	veniceReq := VeniceChatRequest{
		Model:       v.modelName,
		Messages:    chat.UserPrompt(prompt),
		Temperature: DefaultVeniceTemperature,
		MaxTokens:   DefaultVeniceMaxTokens,
		Stream:      false,
		VeniceParameters: VeniceParameters{
			IncludeVeniceSystemPrompt: false,
			EnableWebSearch:           "off",
		},
	}

	reqBody, err := json.Marshal(veniceReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+v.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, string(body))
	}

	var veniceResp VeniceChatResponse
	if err := json.Unmarshal(body, &veniceResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", ErrServiceUnavailable, err)
	}

	if veniceResp.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", ErrServiceUnavailable, veniceResp.Error.Message)
	}

	if len(veniceResp.Choices) == 0 {
		return "", nil
	}

	return veniceResp.Choices[0].Message.Content, nil
}
