package openai

import (
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
)

func TestNewModelDefaults(t *testing.T) {
	m := NewModel()

	assert.Equal(t, openai.ChatModelGPT4oMini, m.opts.Model)
	assert.Equal(t, 0.2, m.opts.Temperature)
	assert.Empty(t, m.opts.APIKey)
}

func TestNewModelAppliesAPIKey(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.Model = "gpt-4o"
		o.APIKey = "sk-test"
	})

	assert.Equal(t, "gpt-4o", m.opts.Model)
	assert.Equal(t, "sk-test", m.opts.APIKey)
}
