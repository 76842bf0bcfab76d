package capability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/hireflow/core"
	"github.com/hupe1980/hireflow/internal/util"
	"github.com/hupe1980/hireflow/model"
	"github.com/hupe1980/hireflow/store"
)

// JDExecutor generates a job description from a natural-language request,
// persists it as a draft job and returns the job id plus formatted text.
type JDExecutor struct {
	model model.Model
	store store.Store
	retry model.RetryPolicy
}

// NewJDExecutor creates a job-description executor.
func NewJDExecutor(m model.Model, s store.Store, optFns ...func(o *ExecutorOptions)) *JDExecutor {
	opts := defaultExecutorOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &JDExecutor{model: m, store: s, retry: opts.Retry}
}

// ExecutorOptions configure the built-in executors.
type ExecutorOptions struct {
	// Retry governs rate-limit retries on model calls.
	Retry model.RetryPolicy
}

func defaultExecutorOptions() ExecutorOptions {
	return ExecutorOptions{Retry: model.DefaultRetryPolicy()}
}

const jdPromptTemplate = `Create a job description for this request: "{{.request}}"
Company: {{default "not specified" .company}}
Preferred location: {{default "not specified" .location}}

Return title, department, location, a short role summary, the list of required qualifications, and the full posting text.`

type jdDraft struct {
	Title        string   `json:"title"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Summary      string   `json:"summary"`
	Requirements []string `json:"requirements"`
	FullText     string   `json:"full_text"`
}

// Execute implements core.CapabilityExecutor.
func (e *JDExecutor) Execute(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
	request := in.Param("title")
	if request == "" {
		request = in.Param("request")
	}
	if request == "" {
		return core.TaskOutput{}, fmt.Errorf("job description request is empty: provide a title or request parameter")
	}

	prompt, err := util.RenderTemplate(jdPromptTemplate, map[string]any{
		"request":  request,
		"company":  in.Param("company"),
		"location": in.Param("location"),
	})
	if err != nil {
		return core.TaskOutput{}, fmt.Errorf("render prompt: %w", err)
	}

	var draft jdDraft
	req := model.Request{
		System: "You write job descriptions for a hiring team. Extract the role details from the request, then produce a complete posting.",
		Prompt: prompt,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":        map[string]any{"type": "string"},
				"department":   map[string]any{"type": "string"},
				"location":     map[string]any{"type": "string"},
				"summary":      map[string]any{"type": "string"},
				"requirements": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"full_text":    map[string]any{"type": "string"},
			},
			"required": []string{"title", "full_text"},
		},
	}

	err = e.retry.Do(ctx, func(ctx context.Context) error {
		return model.CompleteJSON(ctx, e.model, req, &draft)
	})
	if err != nil {
		return core.TaskOutput{}, err
	}

	if strings.TrimSpace(draft.Title) == "" {
		draft.Title = request
	}
	if draft.Location == "" {
		draft.Location = "Remote/Hybrid"
	}

	job := store.Job{
		ID:           core.NewID(),
		Title:        draft.Title,
		Department:   draft.Department,
		Location:     draft.Location,
		Description:  draft.FullText,
		Requirements: draft.Requirements,
		Status:       store.JobStatusDraft,
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.store.PutJob(ctx, job); err != nil {
		return core.TaskOutput{}, fmt.Errorf("persist job: %w", err)
	}

	return core.TaskOutput{
		Data: map[string]any{
			"job_id":      job.ID,
			"title":       job.Title,
			"description": job.Description,
		},
		Message: fmt.Sprintf("Job description created for %s.", job.Title),
	}, nil
}
