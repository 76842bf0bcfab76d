package core

// TaskStatus is the terminal state of a single task execution.
type TaskStatus string

const (
	// TaskStatusSuccess means the executor completed normally.
	TaskStatusSuccess TaskStatus = "success"
	// TaskStatusFailed means the executor errored or timed out.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusSkipped means the task was never dispatched (failed
	// dependency, unsatisfied guard, or cancellation).
	TaskStatusSkipped TaskStatus = "skipped"
)

// Well-known skip reasons recorded on skipped TaskResults.
const (
	SkipReasonDependencyFailed  = "dependency failed"
	SkipReasonDependencySkipped = "dependency skipped"
	SkipReasonGuardNotSatisfied = "guard not satisfied"
	SkipReasonCancelled         = "cancelled"
)

// TaskResult records the outcome of one task. Results are aggregated into an
// ExecutionReport in plan declaration order regardless of completion timing.
type TaskResult struct {
	TaskID     string         `json:"task_id"`
	Capability Capability     `json:"capability"`
	Status     TaskStatus     `json:"status"`
	Output     map[string]any `json:"output,omitempty"`
	Message    string         `json:"message,omitempty"`
	// Error holds the failure detail for failed tasks. It is machine-facing;
	// user-visible text is always templated via UserMessage.
	Error string `json:"error,omitempty"`
	// SkipReason explains why a skipped task never ran.
	SkipReason string `json:"skip_reason,omitempty"`
	// SuggestedNext carries executor-proposed follow-up actions merged into
	// the response's next-action list.
	SuggestedNext []string `json:"suggested_next,omitempty"`
}

// ReportStatus is the overall outcome of a plan execution.
type ReportStatus string

const (
	// ReportComplete means every task either succeeded or was skipped solely
	// by an unsatisfied guard (a legitimate conditional outcome).
	ReportComplete ReportStatus = "complete"
	// ReportPartial means at least one task succeeded but others failed or
	// were skipped due to failure or cancellation.
	ReportPartial ReportStatus = "partial"
	// ReportFailed means no task succeeded.
	ReportFailed ReportStatus = "failed"
)

// ExecutionReport is the aggregate outcome of walking a plan. Results appear
// in plan declaration order even under parallel dispatch.
type ExecutionReport struct {
	PlanID  string       `json:"plan_id"`
	Results []TaskResult `json:"results"`
	Status  ReportStatus `json:"status"`
	// NextActions aggregates per-capability suggestions plus executor
	// SuggestedNext values, deduplicated in order.
	NextActions []string `json:"next_actions,omitempty"`
}

// Result returns the result for a task ID, or false if absent.
func (r *ExecutionReport) Result(taskID string) (TaskResult, bool) {
	for _, res := range r.Results {
		if res.TaskID == taskID {
			return res, true
		}
	}
	return TaskResult{}, false
}

// Succeeded returns the successful results in report order.
func (r *ExecutionReport) Succeeded() []TaskResult {
	var out []TaskResult
	for _, res := range r.Results {
		if res.Status == TaskStatusSuccess {
			out = append(out, res)
		}
	}
	return out
}

// Response is the structured reply returned to the caller: a human-readable
// message, verbatim task outputs keyed by task ID, a next-action list, and a
// stable machine-readable code. Failed and skipped tasks are never silently
// dropped from the message.
type Response struct {
	Message     string                    `json:"message"`
	Data        map[string]map[string]any `json:"data,omitempty"`
	NextActions []string                  `json:"next_actions,omitempty"`
	Code        string                    `json:"code"`
	// Clarification is set when the pipeline needs more information instead
	// of executing a plan.
	Clarification string `json:"clarification,omitempty"`
}
