// Package anthropic provides a model wrapper for the Anthropic Claude API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/hireflow/model"
)

// Options configures the Anthropic model adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{
		client: &client,
		opts:   opts,
	}
}

// NewModelFromClient creates a new Anthropic model from an existing client
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{
		client: client,
		opts:   opts,
	}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.2,
		MaxTokens:   4096,
	}
}

// Complete implements model.Model using a non-streaming Messages call.
func (m *Model) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	params := anthropic.MessageNewParams{
		Model: m.opts.Model,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		MaxTokens:   m.resolveMaxTokens(req),
		Temperature: anthropic.Float(m.resolveTemperature(req)),
	}

	if system := buildSystem(req); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return model.Response{}, wrapError(err)
	}

	var text string
	for _, block := range resp.Content {
		if tb := block.AsText(); tb.Text != "" {
			text += tb.Text
		}
	}

	return model.Response{
		Text: text,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     string(m.opts.Model),
		Provider: "anthropic",
	}
}

func (m *Model) resolveTemperature(req model.Request) float64 {
	if req.Temperature > 0 {
		return req.Temperature
	}
	return m.opts.Temperature
}

func (m *Model) resolveMaxTokens(req model.Request) int64 {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return m.opts.MaxTokens
}

// buildSystem folds the JSON schema hint into the system prompt; the Messages
// API has no schema parameter.
func buildSystem(req model.Request) string {
	system := req.System
	if len(req.Schema) > 0 {
		if raw, err := json.Marshal(req.Schema); err == nil {
			system += "\n\nRespond only with JSON matching this schema:\n" + string(raw)
		}
	}
	return system
}

// wrapError maps SDK errors into the package-neutral error taxonomy.
func wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return &model.RateLimitError{
			Provider:   "anthropic",
			RetryAfter: retryAfter(apiErr.Response),
			Err:        err,
		}
	}
	return fmt.Errorf("anthropic api error: %w", err)
}

func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	if secs, err := time.ParseDuration(resp.Header.Get("Retry-After") + "s"); err == nil && secs > 0 {
		return secs
	}
	return 0
}
