package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRoundTrip(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	job := Job{
		ID:           "job-1",
		Title:        "Backend Engineer",
		Requirements: []string{"Go", "SQL"},
		Status:       JobStatusDraft,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.PutJob(ctx, job))

	got, err := s.Job(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got.Title)

	// Mutating the returned slice must not affect stored state.
	got.Requirements[0] = "mutated"
	again, err := s.Job(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Go", again.Requirements[0])

	_, err = s.Job(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobsOrderedByCreation(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, s.PutJob(ctx, Job{ID: "b", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, s.PutJob(ctx, Job{ID: "a", CreatedAt: base}))

	jobs, err := s.Jobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].ID)
}

func TestCandidatesByJobOrderedByScore(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.PutCandidate(ctx, Candidate{ID: "c1", JobID: "job-1", MatchScore: 62}))
	require.NoError(t, s.PutCandidate(ctx, Candidate{ID: "c2", JobID: "job-1", MatchScore: 88}))
	require.NoError(t, s.PutCandidate(ctx, Candidate{ID: "c3", JobID: "job-2", MatchScore: 95}))

	got, err := s.CandidatesByJob(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, "c1", got[1].ID)
}

func TestMetricsAggregation(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.PutJob(ctx, Job{ID: "j1", Status: JobStatusPosted}))
	require.NoError(t, s.PutJob(ctx, Job{ID: "j2", Status: JobStatusClosed}))
	require.NoError(t, s.PutCandidate(ctx, Candidate{ID: "c1", JobID: "j1", MatchScore: 80, Status: CandidateStatusInterview}))
	require.NoError(t, s.PutCandidate(ctx, Candidate{ID: "c2", JobID: "j1", MatchScore: 60, Status: CandidateStatusScreening}))
	require.NoError(t, s.PutInterview(ctx, Interview{ID: "i1", CandidateID: "c1", Status: InterviewStatusScheduled}))
	require.NoError(t, s.PutInterview(ctx, Interview{ID: "i2", CandidateID: "c2", Status: InterviewStatusCancelled}))

	m, err := s.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TotalJobs)
	assert.Equal(t, 1, m.OpenJobs)
	assert.Equal(t, 2, m.TotalCandidates)
	assert.Equal(t, 1, m.CandidatesByStatus[CandidateStatusInterview])
	assert.InDelta(t, 70.0, m.AverageMatchScore, 0.001)
	assert.Equal(t, 1, m.InterviewsScheduled)
}

func TestMetricsEmptyStore(t *testing.T) {
	s := NewInMemoryStore()

	m, err := s.Metrics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, m.TotalJobs)
	assert.Zero(t, m.AverageMatchScore)
}
