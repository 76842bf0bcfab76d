// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API. It adapts HireFlow's normalized Request/Response
// structures into the SDK's message format and back, and surfaces provider
// throttling as model.RateLimitError so the retry policy can react.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hupe1980/hireflow/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Options configure the OpenAI model adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64

	// APIKey overrides the OPENAI_API_KEY environment variable.
	APIKey string
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.2,
		MaxCompletionTokens: 4096,
	}
}

// NewModel creates a new OpenAI model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := openai.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new OpenAI model from an existing client
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Complete implements model.Model using a non-streaming chat completion.
func (m *Model) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:               m.opts.Model,
		Messages:            buildMessages(req),
		Temperature:         openai.Float(m.resolveTemperature(req)),
		MaxCompletionTokens: openai.Int(m.resolveMaxTokens(req)),
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.Response{}, wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return model.Response{}, fmt.Errorf("openai: no choices returned")
	}

	return model.Response{
		Text: resp.Choices[0].Message.Content,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     m.opts.Model,
		Provider: "openai",
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
	return m.opts.MaxCompletionTokens
}

// buildMessages converts a normalized request into OpenAI chat messages. A
// schema, when present, is appended to the system message since Chat
// Completions has no vendor-neutral structured-output knob worth coupling to.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion

	system := req.System
	if len(req.Schema) > 0 {
		if raw, err := json.Marshal(req.Schema); err == nil {
			system += "\n\nRespond only with JSON matching this schema:\n" + string(raw)
		}
	}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}

	messages = append(messages, openai.UserMessage(req.Prompt))

	return messages
}

// wrapError maps SDK errors into the package-neutral error taxonomy.
func wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return &model.RateLimitError{
			Provider:   "openai",
			RetryAfter: retryAfter(apiErr.Response),
			Err:        err,
		}
	}
	return fmt.Errorf("openai api error: %w", err)
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
