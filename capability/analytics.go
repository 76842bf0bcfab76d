package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/hireflow/core"
	"github.com/hupe1980/hireflow/store"
)

// AnalyticsExecutor computes the hiring overview from the store: job and
// candidate counts, funnel breakdown, average match score and scheduled
// interviews. No model call is involved.
type AnalyticsExecutor struct {
	store store.Store
}

// NewAnalyticsExecutor creates an analytics executor.
func NewAnalyticsExecutor(s store.Store) *AnalyticsExecutor {
	return &AnalyticsExecutor{store: s}
}

// Execute implements core.CapabilityExecutor.
func (e *AnalyticsExecutor) Execute(ctx context.Context, _ core.TaskInput) (core.TaskOutput, error) {
	m, err := e.store.Metrics(ctx)
	if err != nil {
		return core.TaskOutput{}, fmt.Errorf("load metrics: %w", err)
	}

	byStatus := make(map[string]any, len(m.CandidatesByStatus))
	for status, count := range m.CandidatesByStatus {
		byStatus[string(status)] = count
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hiring overview: %d jobs (%d open), %d candidates, %d interviews scheduled.",
		m.TotalJobs, m.OpenJobs, m.TotalCandidates, m.InterviewsScheduled)
	if m.TotalCandidates > 0 {
		fmt.Fprintf(&sb, " Average match score: %.1f%%.", m.AverageMatchScore)
	}

	return core.TaskOutput{
		Data: map[string]any{
			"total_jobs":           m.TotalJobs,
			"open_jobs":            m.OpenJobs,
			"total_candidates":     m.TotalCandidates,
			"candidates_by_status": byStatus,
			"average_match_score":  m.AverageMatchScore,
			"interviews_scheduled": m.InterviewsScheduled,
		},
		Message: sb.String(),
	}, nil
}
