package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/hireflow/core"
	"github.com/hupe1980/hireflow/logging"
	"github.com/hupe1980/hireflow/model"
)

// DefaultThreshold is the confidence gate below which an intent is treated as
// ambiguous.
const DefaultThreshold = 0.6

// FallbackQuestion is returned when classification fails twice and no better
// clarifying question is available.
const FallbackQuestion = "I wasn't sure what you'd like me to do. Could you rephrase your request, for example \"create a job description for a backend engineer\" or \"screen this resume for job_123\"?"

// Options configure a Router.
type Options struct {
	// Threshold is the minimum confidence for an intent to be accepted.
	Threshold float64

	// Retry governs rate-limit retries on the classification call.
	Retry model.RetryPolicy

	Temperature float64

	Logger logging.Logger
}

// Router classifies utterances into capability intents. Deterministic given
// identical (utterance, context, model response) triples: all ordering and
// thresholding below the model call is pure.
type Router struct {
	model model.Model
	opts  Options
}

// New creates a Router over the given model.
func New(m model.Model, optFns ...func(o *Options)) *Router {
	opts := Options{
		Threshold:   DefaultThreshold,
		Retry:       model.DefaultRetryPolicy(),
		Temperature: 0.1,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Router{model: m, opts: opts}
}

// wire types for the classification response.
type wireCondition struct {
	Source string  `json:"source"`
	Field  string  `json:"field"`
	Op     string  `json:"op"`
	Value  float64 `json:"value"`
}

type wireIntent struct {
	Capability string         `json:"capability"`
	Confidence float64        `json:"confidence"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Condition  *wireCondition `json:"condition,omitempty"`
}

type wireResponse struct {
	Intents       []wireIntent `json:"intents"`
	Clarification string       `json:"clarification,omitempty"`
}

// Route classifies utterance given the working context. Multi-intent results
// keep the order the intents appear in the utterance. Ambiguous or
// below-threshold input yields a single clarification intent. Only model
// unavailability (retries exhausted) or context cancellation return an error.
func (r *Router) Route(ctx context.Context, utterance string, wc core.WorkingContext) ([]core.Intent, error) {
	intents, err := r.classify(ctx, utterance, wc, false)
	if err == nil {
		return intents, nil
	}

	var malformed *model.MalformedOutputError
	if !errors.As(err, &malformed) {
		return nil, err
	}

	r.opts.Logger.Warn("classification output malformed, retrying with strict prompt", "error", err)

	intents, err = r.classify(ctx, utterance, wc, true)
	if err == nil {
		return intents, nil
	}

	if !errors.As(err, &malformed) {
		return nil, err
	}

	r.opts.Logger.Warn("classification failed twice, falling back to clarification", "error", err)

	return []core.Intent{core.NewClarificationIntent(FallbackQuestion)}, nil
}

// classify runs one model call and converts its output to intents. A
// *model.MalformedOutputError signals the caller to retry or fall back.
func (r *Router) classify(ctx context.Context, utterance string, wc core.WorkingContext, strict bool) ([]core.Intent, error) {
	req := model.Request{
		System:      systemPrompt(strict),
		Prompt:      buildPrompt(utterance, wc),
		Schema:      responseSchema(),
		Temperature: r.opts.Temperature,
	}

	var resp wireResponse
	err := r.opts.Retry.Do(ctx, func(ctx context.Context) error {
		return model.CompleteJSON(ctx, r.model, req, &resp)
	})
	if err != nil {
		return nil, err
	}

	return r.convert(resp)
}

// convert applies validation and the confidence threshold. Unknown capability
// tags are reported as malformed output so the strict retry kicks in.
func (r *Router) convert(resp wireResponse) ([]core.Intent, error) {
	if len(resp.Intents) == 0 {
		return []core.Intent{core.NewClarificationIntent(clarifyOr(resp.Clarification))}, nil
	}

	intents := make([]core.Intent, 0, len(resp.Intents))
	for _, wi := range resp.Intents {
		tag, err := core.ParseCapability(wi.Capability)
		if err != nil {
			return nil, &model.MalformedOutputError{
				Raw:    wi.Capability,
				Reason: fmt.Sprintf("unknown capability %q", wi.Capability),
			}
		}

		if tag == core.CapabilityClarification {
			return []core.Intent{core.NewClarificationIntent(clarifyOr(resp.Clarification))}, nil
		}

		if wi.Confidence < r.opts.Threshold {
			return []core.Intent{core.NewClarificationIntent(clarifyOr(resp.Clarification))}, nil
		}

		intent := core.Intent{
			Capability: tag,
			Confidence: wi.Confidence,
			Parameters: wi.Parameters,
		}

		if wi.Condition != nil {
			source, err := core.ParseCapability(wi.Condition.Source)
			if err != nil {
				return nil, &model.MalformedOutputError{
					Raw:    wi.Condition.Source,
					Reason: fmt.Sprintf("unknown condition source %q", wi.Condition.Source),
				}
			}
			intent.Condition = &core.Condition{
				Source: source,
				Field:  wi.Condition.Field,
				Op:     wi.Condition.Op,
				Value:  wi.Condition.Value,
			}
		}

		intents = append(intents, intent)
	}

	return intents, nil
}

func clarifyOr(question string) string {
	if strings.TrimSpace(question) != "" {
		return question
	}
	return FallbackQuestion
}

func systemPrompt(strict bool) string {
	var sb strings.Builder
	sb.WriteString("You are the intent router of a hiring assistant. Classify the user's request into capabilities:\n")
	for _, c := range core.Capabilities() {
		if !c.Dispatchable() {
			continue
		}
		sb.WriteString("- ")
		sb.WriteString(string(c))
		sb.WriteString("\n")
	}
	sb.WriteString(`
Rules:
- List intents in the order they appear in the utterance, not by confidence.
- Extract parameters mentioned in the utterance (job_id, candidate_id, job title, resume text, interview type).
- A conditional clause like "if the score is above 80" becomes a "condition" on the dependent intent: source capability, output field, comparison op and numeric value.
- When a later step needs an earlier step's output, reference it as "$<capability>.<field>" in the parameter value, e.g. "$screening.candidate_id".
- If the request is ambiguous or outside these capabilities, return an empty intents list and a clarifying question in "clarification".`)

	if strict {
		sb.WriteString("\n\nIMPORTANT: your previous answer was not valid JSON. Respond with EXACTLY one JSON object matching the schema. No prose, no markdown fences.")
	}

	return sb.String()
}

func buildPrompt(utterance string, wc core.WorkingContext) string {
	var sb strings.Builder

	if wc.Summary != "" {
		sb.WriteString("Conversation summary:\n")
		sb.WriteString(wc.Summary)
		sb.WriteString("\n\n")
	}

	if len(wc.Slots) > 0 {
		raw, err := json.Marshal(wc.Slots)
		if err == nil {
			sb.WriteString("Known references: ")
			sb.Write(raw)
			sb.WriteString("\n\n")
		}
	}

	if len(wc.Recent) > 0 {
		sb.WriteString("Recent turns:\n")
		for _, t := range wc.Recent {
			sb.WriteString(string(t.Role))
			sb.WriteString(": ")
			sb.WriteString(t.Text)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("User request: ")
	sb.WriteString(utterance)

	return sb.String()
}

func responseSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"intents": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"capability": map[string]any{"type": "string"},
						"confidence": map[string]any{"type": "number"},
						"parameters": map[string]any{"type": "object"},
						"condition": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"source": map[string]any{"type": "string"},
								"field":  map[string]any{"type": "string"},
								"op":     map[string]any{"type": "string"},
								"value":  map[string]any{"type": "number"},
							},
						},
					},
					"required": []string{"capability", "confidence"},
				},
			},
			"clarification": map[string]any{"type": "string"},
		},
		"required": []string{"intents"},
	}
}
