package capability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hireflow/core"
	"github.com/hupe1980/hireflow/model"
	"github.com/hupe1980/hireflow/store"
)

func TestJDExecutorCreatesDraftJob(t *testing.T) {
	m := model.NewMockModel().AddResponse(`{
		"title": "Senior Python Developer",
		"department": "Engineering",
		"location": "Remote",
		"summary": "Own backend services.",
		"requirements": ["Python", "5+ years experience"],
		"full_text": "We are hiring a Senior Python Developer..."
	}`)
	st := store.NewInMemoryStore()

	out, err := NewJDExecutor(m, st).Execute(context.Background(), core.TaskInput{
		Parameters: map[string]any{"title": "Senior Python Developer"},
	})
	require.NoError(t, err)

	jobID, ok := out.Data["job_id"].(string)
	require.True(t, ok)
	assert.Contains(t, out.Message, "Senior Python Developer")

	job, err := st.Job(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, store.JobStatusDraft, job.Status)
	assert.Equal(t, []string{"Python", "5+ years experience"}, job.Requirements)
}

func TestJDExecutorRequiresRequest(t *testing.T) {
	_, err := NewJDExecutor(model.NewMockModel(), store.NewInMemoryStore()).
		Execute(context.Background(), core.TaskInput{})
	assert.Error(t, err)
}

func TestScreeningExecutorPersistsCandidate(t *testing.T) {
	st := store.NewInMemoryStore()
	require.NoError(t, st.PutJob(context.Background(), store.Job{
		ID:           "job_123",
		Title:        "Backend Engineer",
		Requirements: []string{"Go", "SQL"},
		Status:       store.JobStatusPosted,
		CreatedAt:    time.Now().UTC(),
	}))

	m := model.NewMockModel().AddResponse(`{
		"candidate_name": "Alex Doe",
		"email": "alex@example.com",
		"match_score": 85,
		"matching_skills": ["Go"],
		"missing_skills": ["SQL"],
		"summary": "Strong backend background.",
		"recommendation": "strong_match"
	}`)

	out, err := NewScreeningExecutor(m, st).Execute(context.Background(), core.TaskInput{
		Parameters: map[string]any{"job_id": "job_123", "resume": "Alex Doe, Go developer..."},
	})
	require.NoError(t, err)

	assert.InDelta(t, 85, out.Data["match_score"].(float64), 0.001)
	assert.Equal(t, "strong_match", out.Data["recommendation"])
	assert.Contains(t, out.SuggestedNext, "Schedule interview immediately")

	candidateID := out.Data["candidate_id"].(string)
	candidate, err := st.Candidate(context.Background(), candidateID)
	require.NoError(t, err)
	assert.Equal(t, store.CandidateStatusInterview, candidate.Status)
	assert.Equal(t, "alex@example.com", candidate.Email)
}

func TestScreeningStatusTiers(t *testing.T) {
	assert.Equal(t, store.CandidateStatusInterview, statusForScore(80))
	assert.Equal(t, store.CandidateStatusScreening, statusForScore(60))
	assert.Equal(t, store.CandidateStatusNew, statusForScore(59.9))
}

func TestScreeningExecutorUnknownJob(t *testing.T) {
	m := model.NewMockModel()
	_, err := NewScreeningExecutor(m, store.NewInMemoryStore()).Execute(context.Background(), core.TaskInput{
		Parameters: map[string]any{"job_id": "nope", "resume": "..."},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInterviewExecutorSchedulesAndFlipsStatus(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemoryStore()
	require.NoError(t, st.PutJob(ctx, store.Job{ID: "job-1", Title: "Backend Engineer", Status: store.JobStatusPosted, CreatedAt: time.Now().UTC()}))
	require.NoError(t, st.PutCandidate(ctx, store.Candidate{
		ID: "cand-1", JobID: "job-1", Name: "Alex Doe",
		MatchScore: 85, Status: store.CandidateStatusScreening, CreatedAt: time.Now().UTC(),
	}))

	e := NewInterviewExecutor(st)
	fixed := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	out, err := e.Execute(ctx, core.TaskInput{
		Parameters: map[string]any{"candidate_id": "cand-1"},
	})
	require.NoError(t, err)

	ivID := out.Data["interview_id"].(string)
	iv, err := st.Interview(ctx, ivID)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(DefaultInterviewLead), iv.ScheduledAt)
	assert.Equal(t, store.InterviewTypeVirtual, iv.Type)
	assert.Contains(t, iv.MeetingLink, ivID)

	candidate, err := st.Candidate(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, store.CandidateStatusInterview, candidate.Status)
}

func TestInterviewExecutorExplicitSlot(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemoryStore()
	require.NoError(t, st.PutJob(ctx, store.Job{ID: "job-1", Title: "Backend Engineer", CreatedAt: time.Now().UTC()}))
	require.NoError(t, st.PutCandidate(ctx, store.Candidate{ID: "cand-1", JobID: "job-1", Name: "Alex Doe", CreatedAt: time.Now().UTC()}))

	out, err := NewInterviewExecutor(st).Execute(ctx, core.TaskInput{
		Parameters: map[string]any{
			"candidate_id":   "cand-1",
			"interview_type": "onsite",
			"scheduled_at":   "2026-09-03T14:00:00Z",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-09-03T14:00:00Z", out.Data["scheduled_at"])
	assert.Empty(t, out.Data["meeting_link"])
}

func TestInterviewExecutorUnknownCandidate(t *testing.T) {
	_, err := NewInterviewExecutor(store.NewInMemoryStore()).Execute(context.Background(), core.TaskInput{
		Parameters: map[string]any{"candidate_id": "ghost"},
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAnalyticsExecutorOverview(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemoryStore()
	require.NoError(t, st.PutJob(ctx, store.Job{ID: "j1", Status: store.JobStatusPosted, CreatedAt: time.Now().UTC()}))
	require.NoError(t, st.PutCandidate(ctx, store.Candidate{ID: "c1", JobID: "j1", MatchScore: 70, Status: store.CandidateStatusScreening, CreatedAt: time.Now().UTC()}))

	out, err := NewAnalyticsExecutor(st).Execute(ctx, core.TaskInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Data["total_jobs"])
	assert.Equal(t, 1, out.Data["total_candidates"])
	assert.Contains(t, out.Message, "Hiring overview")
}

func TestNewRegistryWiresAllCapabilities(t *testing.T) {
	r, err := NewRegistry(model.NewMockModel(), store.NewInMemoryStore())
	require.NoError(t, err)

	assert.Equal(t, []core.Capability{
		core.CapabilityJobDescription,
		core.CapabilityScreening,
		core.CapabilityInterviewScheduling,
		core.CapabilityAnalytics,
	}, r.Capabilities())

	assert.Equal(t, []string{
		"Review and edit the job description",
		"Post to job boards",
		"Start screening candidates",
	}, r.NextActions(core.CapabilityJobDescription))

	assert.Contains(t, r.Outputs(core.CapabilityScreening), "match_score")
}
