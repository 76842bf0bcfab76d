package capability

import (
	"time"

	"github.com/hupe1980/hireflow/core"
	"github.com/hupe1980/hireflow/internal/util"
	"github.com/hupe1980/hireflow/model"
	"github.com/hupe1980/hireflow/registry"
	"github.com/hupe1980/hireflow/store"
)

// Argument structs describe each capability's parameters; their schemas are
// derived via reflection so the prompt-facing contract lives next to the
// executor that consumes it.
type jdArgs struct {
	Title    string `json:"title,omitempty" description:"Role title, e.g. Senior Python Developer"`
	Request  string `json:"request,omitempty" description:"Free-form description of the role to hire for"`
	Company  string `json:"company,omitempty" description:"Company or team name"`
	Location string `json:"location,omitempty" description:"Preferred location or remote policy"`
}

type screeningArgs struct {
	JobID          string `json:"job_id" description:"Job the resume is screened against"`
	Resume         string `json:"resume" description:"Plain-text resume content"`
	CandidateEmail string `json:"candidate_email,omitempty" description:"Candidate contact email when known"`
}

type interviewArgs struct {
	CandidateID   string `json:"candidate_id" description:"Candidate to interview"`
	JobID         string `json:"job_id,omitempty" description:"Job the interview is for, defaults to the candidate's job"`
	InterviewType string `json:"interview_type,omitempty" description:"virtual or onsite"`
	ScheduledAt   string `json:"scheduled_at,omitempty" description:"RFC3339 interview time, defaults to one week out"`
}

type analyticsArgs struct{}

// RegistryOptions configure the built-in registry wiring.
type RegistryOptions struct {
	// ModelTimeout bounds dispatches that call the language model.
	ModelTimeout time.Duration

	// StoreTimeout bounds store-only dispatches.
	StoreTimeout time.Duration

	Retry model.RetryPolicy
}

// NewRegistry wires the built-in executors into a validated capability
// registry with parameter schemas, declared outputs and the static
// next-action table.
func NewRegistry(m model.Model, s store.Store, optFns ...func(o *RegistryOptions)) (*registry.Registry, error) {
	opts := RegistryOptions{
		ModelTimeout: 60 * time.Second,
		StoreTimeout: 10 * time.Second,
		Retry:        model.DefaultRetryPolicy(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	withRetry := func(o *ExecutorOptions) { o.Retry = opts.Retry }

	return registry.New(
		registry.Entry{
			Capability:  core.CapabilityJobDescription,
			Description: "Generate and persist a draft job description from a natural-language request.",
			Parameters:  util.CreateSchema(jdArgs{}),
			Outputs:     []string{"job_id", "title", "description"},
			Executor:    NewJDExecutor(m, s, withRetry),
			Timeout:     opts.ModelTimeout,
			NextActions: []string{
				"Review and edit the job description",
				"Post to job boards",
				"Start screening candidates",
			},
		},
		registry.Entry{
			Capability:  core.CapabilityScreening,
			Description: "Evaluate a pre-extracted resume against a job's requirements.",
			Parameters:  util.CreateSchema(screeningArgs{}),
			Outputs:     []string{"candidate_id", "match_score", "recommendation", "status", "summary"},
			Executor:    NewScreeningExecutor(m, s, withRetry),
			Timeout:     opts.ModelTimeout,
		},
		registry.Entry{
			Capability:  core.CapabilityInterviewScheduling,
			Description: "Book an interview for a screened candidate.",
			Parameters:  util.CreateSchema(interviewArgs{}),
			Outputs:     []string{"interview_id", "candidate_id", "scheduled_at", "meeting_link"},
			Executor:    NewInterviewExecutor(s),
			Timeout:     opts.StoreTimeout,
			NextActions: []string{
				"Send interview invitation email",
				"Prepare interview questions",
				"Share candidate profile with interviewer",
			},
		},
		registry.Entry{
			Capability:  core.CapabilityAnalytics,
			Description: "Compute the hiring overview from stored jobs, candidates and interviews.",
			Parameters:  util.CreateSchema(analyticsArgs{}),
			Outputs:     []string{"total_jobs", "open_jobs", "total_candidates", "candidates_by_status", "average_match_score", "interviews_scheduled"},
			Executor:    NewAnalyticsExecutor(s),
			Timeout:     opts.StoreTimeout,
		},
	)
}
