package capability

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/hireflow/core"
	"github.com/hupe1980/hireflow/store"
)

// DefaultInterviewLead is the scheduling offset when no slot is requested.
const DefaultInterviewLead = 7 * 24 * time.Hour

// InterviewExecutor books an interview for a screened candidate: it creates
// the interview record with a generated meeting link for virtual interviews
// and moves the candidate to the interview stage. Calendar and email delivery
// are external collaborators and out of scope here.
type InterviewExecutor struct {
	store store.Store

	// now is swappable for tests.
	now func() time.Time
}

// NewInterviewExecutor creates an interview-scheduling executor.
func NewInterviewExecutor(s store.Store) *InterviewExecutor {
	return &InterviewExecutor{store: s, now: time.Now}
}

// Execute implements core.CapabilityExecutor.
func (e *InterviewExecutor) Execute(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
	candidateID := in.Param("candidate_id")
	if candidateID == "" {
		return core.TaskOutput{}, fmt.Errorf("candidate_id required")
	}

	candidate, err := e.store.Candidate(ctx, candidateID)
	if err != nil {
		return core.TaskOutput{}, fmt.Errorf("load candidate %s: %w", candidateID, err)
	}

	jobID := firstNonEmpty(in.Param("job_id"), candidate.JobID)
	job, err := e.store.Job(ctx, jobID)
	if err != nil {
		return core.TaskOutput{}, fmt.Errorf("load job %s: %w", jobID, err)
	}

	scheduledAt := e.now().UTC().Add(DefaultInterviewLead).Truncate(time.Minute)
	if raw := in.Param("scheduled_at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return core.TaskOutput{}, fmt.Errorf("invalid scheduled_at %q: %w", raw, err)
		}
		scheduledAt = parsed.UTC()
	}

	ivType := store.InterviewTypeVirtual
	if in.Param("interview_type") == string(store.InterviewTypeOnsite) {
		ivType = store.InterviewTypeOnsite
	}

	iv := store.Interview{
		ID:          core.NewID(),
		CandidateID: candidate.ID,
		JobID:       job.ID,
		ScheduledAt: scheduledAt,
		Duration:    time.Hour,
		Type:        ivType,
		Status:      store.InterviewStatusScheduled,
		CreatedAt:   e.now().UTC(),
	}
	if ivType == store.InterviewTypeVirtual {
		iv.MeetingLink = "https://meet.hireflow.dev/" + iv.ID
	}

	if err := e.store.PutInterview(ctx, iv); err != nil {
		return core.TaskOutput{}, fmt.Errorf("persist interview: %w", err)
	}

	candidate.Status = store.CandidateStatusInterview
	if err := e.store.PutCandidate(ctx, candidate); err != nil {
		return core.TaskOutput{}, fmt.Errorf("update candidate status: %w", err)
	}

	out := core.TaskOutput{
		Data: map[string]any{
			"interview_id": iv.ID,
			"candidate_id": candidate.ID,
			"scheduled_at": iv.ScheduledAt.Format(time.RFC3339),
			"meeting_link": iv.MeetingLink,
		},
		Message: fmt.Sprintf("Interview with %s for %s scheduled on %s.",
			candidate.Name, job.Title, iv.ScheduledAt.Format("2006-01-02 at 15:04")),
	}

	return out, nil
}
