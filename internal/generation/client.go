// Package generation issues the three model requests a training session needs.
// Each request is exactly one LLMService.Complete call bounded by a timeout;
// the raw text is returned unparsed.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/cnv-trainer/internal/services"
	"github.com/jwebster45206/cnv-trainer/pkg/profile"
	"github.com/jwebster45206/cnv-trainer/pkg/prompts"
	"github.com/jwebster45206/cnv-trainer/pkg/scenario"
	"github.com/jwebster45206/cnv-trainer/pkg/state"
)

const DefaultTimeout = 60 * time.Second

// Client wraps an explicit LLMService instance.
type Client struct {
	llm     services.LLMService
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Client)

// WithTimeout bounds every request. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(llm services.LLMService, opts ...Option) *Client {
	c := &Client{
		llm:     llm,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestScenarios asks for exactly n scenarios personalised to p.
func (c *Client) RequestScenarios(ctx context.Context, p profile.UserProfile, n int) (string, error) {
	prompt, err := prompts.BuildScenarioPrompt(p, n)
	if err != nil {
		return "", err
	}
	return c.complete(ctx, "scenarios", prompt)
}

// RequestFeedback asks for the remark on one choice. The points the choice
// earns are embedded in the prompt.
func (c *Client) RequestFeedback(ctx context.Context, situation, chosen string, category scenario.OptionCategory, name string) (string, error) {
	prompt, err := prompts.BuildFeedbackPrompt(situation, chosen, category, name)
	if err != nil {
		return "", err
	}
	return c.complete(ctx, "feedback", prompt)
}

// RequestSummary asks for the closing narrative.
func (c *Client) RequestSummary(ctx context.Context, name string, score, totalPossible int, counts state.CategoryCounts) (string, error) {
	return c.complete(ctx, "summary", prompts.BuildSummaryPrompt(name, score, totalPossible, counts))
}

func (c *Client) complete(ctx context.Context, kind, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.llm.Complete(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, services.ErrServiceUnavailable) {
			err = fmt.Errorf("%w: %s request timed out: %v", services.ErrServiceUnavailable, kind, err)
		}
		c.logger.Warn("Generation request failed",
			"kind", kind,
			"model", c.llm.ModelName(),
			"duration_ms", elapsed.Milliseconds(),
			"error", err)
		return "", err
	}

	c.logger.Debug("Generation request completed",
		"kind", kind,
		"model", c.llm.ModelName(),
		"duration_ms", elapsed.Milliseconds(),
		"response_length", len(text))
	return text, nil
}
