package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hireflow/core"
	"github.com/hupe1980/hireflow/model"
)

func TestRouteSingleIntent(t *testing.T) {
	m := model.NewMockModel().AddResponse(`{
		"intents": [{
			"capability": "job_description",
			"confidence": 0.95,
			"parameters": {"title": "Senior Python Developer"}
		}]
	}`)

	r := New(m)
	intents, err := r.Route(context.Background(), "Create a JD for a Senior Python Developer", core.WorkingContext{})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, core.CapabilityJobDescription, intents[0].Capability)
	assert.Equal(t, "Senior Python Developer", intents[0].Parameters["title"])
}

func TestRouteMultiIntentKeepsDeclarationOrder(t *testing.T) {
	// Screening comes first in the utterance but has the lower confidence;
	// order must still follow the utterance.
	m := model.NewMockModel().AddResponse(`{
		"intents": [
			{"capability": "screening", "confidence": 0.7, "parameters": {"job_id": "job_123"}},
			{
				"capability": "interview_scheduling",
				"confidence": 0.9,
				"parameters": {"candidate_id": "$screening.candidate_id"},
				"condition": {"source": "screening", "field": "match_score", "op": ">", "value": 80}
			}
		]
	}`)

	r := New(m)
	intents, err := r.Route(context.Background(), "Screen resume X for job_123 and schedule an interview if match > 80%", core.WorkingContext{})
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.Equal(t, core.CapabilityScreening, intents[0].Capability)
	assert.Equal(t, core.CapabilityInterviewScheduling, intents[1].Capability)

	require.NotNil(t, intents[1].Condition)
	assert.Equal(t, core.CapabilityScreening, intents[1].Condition.Source)
	assert.Equal(t, "match_score", intents[1].Condition.Field)
	assert.Equal(t, ">", intents[1].Condition.Op)
	assert.InDelta(t, 80, intents[1].Condition.Value, 0.001)
}

func TestRouteBelowThresholdYieldsClarification(t *testing.T) {
	m := model.NewMockModel().AddResponse(`{
		"intents": [{"capability": "analytics", "confidence": 0.4}],
		"clarification": "Do you want a hiring overview?"
	}`)

	r := New(m)
	intents, err := r.Route(context.Background(), "numbers?", core.WorkingContext{})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.True(t, intents[0].IsClarification())
	assert.Equal(t, "Do you want a hiring overview?", intents[0].Clarification)
}

func TestRouteEmptyIntentsYieldsClarification(t *testing.T) {
	m := model.NewMockModel().AddResponse(`{"intents": []}`)

	r := New(m)
	intents, err := r.Route(context.Background(), "what's the weather", core.WorkingContext{})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.True(t, intents[0].IsClarification())
	assert.NotEmpty(t, intents[0].Clarification)
}

func TestRouteMalformedThenValid(t *testing.T) {
	m := model.NewMockModel().
		AddResponse("I think this is about job descriptions!").
		AddResponse(`{"intents": [{"capability": "job_description", "confidence": 0.9}]}`)

	r := New(m)
	intents, err := r.Route(context.Background(), "Create a JD", core.WorkingContext{})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, core.CapabilityJobDescription, intents[0].Capability)

	calls := m.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].System, "EXACTLY one JSON object")
}

func TestRouteMalformedTwiceFallsBackToClarification(t *testing.T) {
	m := model.NewMockModel().
		AddResponse("not json").
		AddResponse("still not json")

	r := New(m)
	intents, err := r.Route(context.Background(), "Create a JD", core.WorkingContext{})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.True(t, intents[0].IsClarification())
	assert.Equal(t, FallbackQuestion, intents[0].Clarification)
}

func TestRouteUnknownCapabilityTreatedAsMalformed(t *testing.T) {
	m := model.NewMockModel().
		AddResponse(`{"intents": [{"capability": "make_coffee", "confidence": 0.9}]}`).
		AddResponse(`{"intents": [{"capability": "analytics", "confidence": 0.9}]}`)

	r := New(m)
	intents, err := r.Route(context.Background(), "metrics please", core.WorkingContext{})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, core.CapabilityAnalytics, intents[0].Capability)
}

func TestRoutePropagatesModelUnavailable(t *testing.T) {
	m := model.NewMockModel().
		AddError(&model.RateLimitError{Provider: "openai"}).
		AddError(&model.RateLimitError{Provider: "openai"})

	r := New(m, func(o *Options) {
		o.Retry = model.RetryPolicy{MaxAttempts: 2, InitialBackoff: 1, Multiplier: 2}
	})

	_, err := r.Route(context.Background(), "Create a JD", core.WorkingContext{})
	var unavailable *core.ModelUnavailableError
	require.True(t, errors.As(err, &unavailable))
}

func TestBuildPromptIncludesContext(t *testing.T) {
	wc := core.WorkingContext{
		Summary: "User is hiring a backend engineer.",
		Slots:   map[string]string{core.SlotCurrentJobID: "job-1"},
		Recent: []core.Turn{
			{Role: core.RoleUser, Text: "create the posting"},
		},
	}

	prompt := buildPrompt("screen this resume", wc)
	assert.Contains(t, prompt, "User is hiring a backend engineer.")
	assert.Contains(t, prompt, "job-1")
	assert.Contains(t, prompt, "create the posting")
	assert.Contains(t, prompt, "User request: screen this resume")
}
