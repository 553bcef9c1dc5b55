package services

import (
	"context"
)

// LLMService is a single-shot text completion against a generative model.
// Implementations issue exactly one request per call and never retry.
type LLMService interface {
	// Complete sends prompt and returns the raw model text.
	Complete(ctx context.Context, prompt string) (string, error)

	// ModelName reports the model used for completions.
	ModelName() string
}
