package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"leading prose", `Here is the result: {"a":1}`, `{"a":1}`},
		{"trailing prose", `{"a":1} hope that helps!`, `{"a":1}`},
		{"no json", "sorry, I cannot help with that", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.text))
		})
	}
}

func TestCompleteJSONDecodesCleanedOutput(t *testing.T) {
	m := NewMockModel().AddResponse("```json\n{\"intent\":\"screening\",\"confidence\":0.9}\n```")

	var out struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
	}

	err := CompleteJSON(context.Background(), m, Request{Prompt: "classify"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "screening", out.Intent)
	assert.InDelta(t, 0.9, out.Confidence, 0.001)
}

func TestCompleteJSONMalformedOutput(t *testing.T) {
	m := NewMockModel().AddResponse("I am not JSON at all")

	var out map[string]any
	err := CompleteJSON(context.Background(), m, Request{Prompt: "classify"}, &out)

	var malformed *MalformedOutputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "I am not JSON at all", malformed.Raw)
}

func TestCompleteJSONPropagatesModelError(t *testing.T) {
	sentinel := &RateLimitError{Provider: "openai"}
	m := NewMockModel().AddError(sentinel)

	var out map[string]any
	err := CompleteJSON(context.Background(), m, Request{Prompt: "classify"}, &out)

	var rle *RateLimitError
	require.True(t, errors.As(err, &rle))
}
