package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/hireflow/core"
	"github.com/hupe1980/hireflow/model"
	"github.com/hupe1980/hireflow/store"
)

// ScreeningExecutor evaluates a pre-extracted resume document against a job's
// requirements, persists the candidate and derives the funnel status from the
// match score. Resume parsing itself is an upstream concern; the executor
// expects plain text.
type ScreeningExecutor struct {
	model model.Model
	store store.Store
	retry model.RetryPolicy
}

// NewScreeningExecutor creates a screening executor.
func NewScreeningExecutor(m model.Model, s store.Store, optFns ...func(o *ExecutorOptions)) *ScreeningExecutor {
	opts := defaultExecutorOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ScreeningExecutor{model: m, store: s, retry: opts.Retry}
}

type screeningResult struct {
	CandidateName  string   `json:"candidate_name"`
	Email          string   `json:"email"`
	MatchScore     float64  `json:"match_score"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Summary        string   `json:"summary"`
	Recommendation string   `json:"recommendation"`
}

// Execute implements core.CapabilityExecutor.
func (e *ScreeningExecutor) Execute(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
	jobID := in.Param("job_id")
	if jobID == "" {
		return core.TaskOutput{}, fmt.Errorf("job_id required")
	}
	resume := in.Param("resume")
	if resume == "" {
		return core.TaskOutput{}, fmt.Errorf("resume required")
	}

	job, err := e.store.Job(ctx, jobID)
	if err != nil {
		return core.TaskOutput{}, fmt.Errorf("load job %s: %w", jobID, err)
	}

	requirements, _ := json.Marshal(job.Requirements)

	var result screeningResult
	req := model.Request{
		System: "You evaluate candidates against job requirements for a hiring team.",
		Prompt: fmt.Sprintf(`Evaluate this candidate against the job requirements.

JOB: %s
REQUIREMENTS: %s

RESUME:
%s

Calculate a match score from 0 to 100 based on skills, experience and qualifications. List matching and missing skills, write a 2-3 sentence summary, and recommend one of: strong_match (80+), good_match (60-80), potential_match (40-60), not_recommended (<40). Extract the candidate's name and email from the resume.`, job.Title, requirements, resume),
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"candidate_name":  map[string]any{"type": "string"},
				"email":           map[string]any{"type": "string"},
				"match_score":     map[string]any{"type": "number"},
				"matching_skills": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"missing_skills":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"summary":         map[string]any{"type": "string"},
				"recommendation":  map[string]any{"type": "string"},
			},
			"required": []string{"match_score", "recommendation"},
		},
	}

	err = e.retry.Do(ctx, func(ctx context.Context) error {
		return model.CompleteJSON(ctx, e.model, req, &result)
	})
	if err != nil {
		return core.TaskOutput{}, err
	}

	if result.CandidateName == "" {
		result.CandidateName = "Unknown"
	}

	candidate := store.Candidate{
		ID:             core.NewID(),
		JobID:          jobID,
		Name:           result.CandidateName,
		Email:          firstNonEmpty(in.Param("candidate_email"), result.Email),
		MatchScore:     result.MatchScore,
		MatchingSkills: result.MatchingSkills,
		MissingSkills:  result.MissingSkills,
		Recommendation: result.Recommendation,
		Status:         statusForScore(result.MatchScore),
		CreatedAt:      time.Now().UTC(),
	}
	if err := e.store.PutCandidate(ctx, candidate); err != nil {
		return core.TaskOutput{}, fmt.Errorf("persist candidate: %w", err)
	}

	return core.TaskOutput{
		Data: map[string]any{
			"candidate_id":   candidate.ID,
			"match_score":    candidate.MatchScore,
			"recommendation": candidate.Recommendation,
			"status":         string(candidate.Status),
			"summary":        result.Summary,
		},
		Message:       fmt.Sprintf("Screened candidate %s (match: %.0f%%).", candidate.Name, candidate.MatchScore),
		SuggestedNext: screeningNextActions(candidate.Recommendation),
	}, nil
}

// statusForScore maps a match score to the candidate funnel status.
func statusForScore(score float64) store.CandidateStatus {
	switch {
	case score >= 80:
		return store.CandidateStatusInterview
	case score >= 60:
		return store.CandidateStatusScreening
	default:
		return store.CandidateStatusNew
	}
}

// screeningNextActions suggests follow-ups tiered by recommendation.
func screeningNextActions(recommendation string) []string {
	switch recommendation {
	case "strong_match":
		return []string{
			"Schedule interview immediately",
			"Send interview invitation email",
			"Prepare interview questions",
		}
	case "good_match":
		return []string{
			"Review resume in detail",
			"Consider for phone screening",
			"Compare with other candidates",
		}
	case "potential_match":
		return []string{
			"Keep in pipeline",
			"Request additional information",
			"Consider for future positions",
		}
	default:
		return []string{
			"Send rejection email",
			"Archive application",
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
