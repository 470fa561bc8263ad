package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/earnings-cli/internal/logger"
	"github.com/KaramelBytes/earnings-cli/internal/utils"
)

// Chat defaults.
const (
	DefaultModel       = "gpt-4.1"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 800
	SystemPersona      = "You are a data analyst."
)

// ErrNoChoices is returned when the completion has no choices.
var ErrNoChoices = errors.New("no response choices returned")

// ChatOptions tunes the request sent by Chat.Ask. Empty fields fall back
// to the package defaults; a non-nil Temperature is sent as is, 0 included.
type ChatOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
	Log         logger.Logger
}

// Chat sends one prompt per call with a fixed system persona.
type Chat struct {
	rt   Runtime
	opts ChatOptions
}

func NewChat(rt Runtime, opts ChatOptions) *Chat {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Temperature == nil {
		opts.Temperature = Float64(DefaultTemperature)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Log == nil {
		opts.Log = logger.NewNoOpLogger()
	}
	return &Chat{rt: rt, opts: opts}
}

// Model returns the model identifier requests are sent with.
func (c *Chat) Model() string { return c.opts.Model }

// Ask sends the prompt as the user message and returns the trimmed content
// of the first choice.
func (c *Chat) Ask(ctx context.Context, prompt string) (string, error) {
	req := GenerateRequest{
		Model: c.opts.Model,
		Messages: []Message{
			{Role: "system", Content: SystemPersona},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.opts.MaxTokens,
		Temperature: Float64(*c.opts.Temperature),
	}
	c.opts.Log.Debug("sending chat request", map[string]interface{}{
		"model":         req.Model,
		"prompt_tokens": utils.CountTokens(SystemPersona) + utils.CountTokens(prompt),
	})
	resp, err := c.rt.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	fields := map[string]interface{}{
		"request_id":        resp.RequestID,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	}
	if cost, ok := EstimateCostUSD(req.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens); ok {
		fields["est_cost_usd"] = fmt.Sprintf("%.4f", cost)
	}
	c.opts.Log.Debug("chat response received", fields)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
