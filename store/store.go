package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("store: record not found")

// JobStatus tracks a job posting through its lifecycle.
type JobStatus string

// Job lifecycle states.
const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusPosted JobStatus = "posted"
	JobStatusClosed JobStatus = "closed"
)

// Job is a job posting record.
type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Department   string    `json:"department,omitempty"`
	Location     string    `json:"location,omitempty"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements,omitempty"`
	Status       JobStatus `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// CandidateStatus tracks a candidate through the hiring funnel.
type CandidateStatus string

// Candidate funnel states.
const (
	CandidateStatusNew       CandidateStatus = "new"
	CandidateStatusScreening CandidateStatus = "screening"
	CandidateStatusInterview CandidateStatus = "interview"
	CandidateStatusOffer     CandidateStatus = "offer"
	CandidateStatusRejected  CandidateStatus = "rejected"
)

// Candidate is a screened applicant tied to a job.
type Candidate struct {
	ID             string          `json:"id"`
	JobID          string          `json:"job_id"`
	Name           string          `json:"name"`
	Email          string          `json:"email,omitempty"`
	MatchScore     float64         `json:"match_score"`
	MatchingSkills []string        `json:"matching_skills,omitempty"`
	MissingSkills  []string        `json:"missing_skills,omitempty"`
	Recommendation string          `json:"recommendation,omitempty"`
	Status         CandidateStatus `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

// InterviewType distinguishes virtual from onsite interviews.
type InterviewType string

// Interview formats.
const (
	InterviewTypeVirtual InterviewType = "virtual"
	InterviewTypeOnsite  InterviewType = "onsite"
)

// InterviewStatus tracks an interview booking.
type InterviewStatus string

// Interview booking states.
const (
	InterviewStatusScheduled InterviewStatus = "scheduled"
	InterviewStatusCompleted InterviewStatus = "completed"
	InterviewStatusCancelled InterviewStatus = "cancelled"
)

// Interview is a scheduled interview record.
type Interview struct {
	ID          string          `json:"id"`
	CandidateID string          `json:"candidate_id"`
	JobID       string          `json:"job_id"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	Duration    time.Duration   `json:"duration"`
	Type        InterviewType   `json:"type"`
	MeetingLink string          `json:"meeting_link,omitempty"`
	Status      InterviewStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Metrics is the aggregate snapshot served to the analytics capability.
type Metrics struct {
	TotalJobs           int                     `json:"total_jobs"`
	OpenJobs            int                     `json:"open_jobs"`
	TotalCandidates     int                     `json:"total_candidates"`
	CandidatesByStatus  map[CandidateStatus]int `json:"candidates_by_status"`
	AverageMatchScore   float64                 `json:"average_match_score"`
	InterviewsScheduled int                     `json:"interviews_scheduled"`
}

// Store is the persistence contract consumed by capability executors. Put
// operations upsert by id; lookups return ErrNotFound for unknown ids.
type Store interface {
	PutJob(ctx context.Context, job Job) error
	Job(ctx context.Context, id string) (Job, error)
	Jobs(ctx context.Context) ([]Job, error)

	PutCandidate(ctx context.Context, c Candidate) error
	Candidate(ctx context.Context, id string) (Candidate, error)
	CandidatesByJob(ctx context.Context, jobID string) ([]Candidate, error)

	PutInterview(ctx context.Context, iv Interview) error
	Interview(ctx context.Context, id string) (Interview, error)

	Metrics(ctx context.Context) (Metrics, error)

	Close() error
}
