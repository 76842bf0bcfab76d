package core

import "context"

// TaskInput is the resolved input handed to a capability executor: parameters
// with all output references substituted, plus the current working context.
type TaskInput struct {
	Parameters map[string]any
	Context    WorkingContext
}

// Param returns the string form of a parameter, or "" if absent.
func (in TaskInput) Param(name string) string {
	if v, ok := in.Parameters[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// TaskOutput is the uniform result contract for capability executors.
type TaskOutput struct {
	// Data holds the structured output payload; fields may be referenced by
	// dependent tasks and guards (e.g. "score", "candidate_id").
	Data map[string]any
	// Message is a one-line human-readable summary of what was done.
	Message string
	// SuggestedNext optionally proposes follow-up actions beyond the
	// registry's static suggestion table.
	SuggestedNext []string
}

// CapabilityExecutor is the uniform synchronous contract for the external
// collaborators bound to capabilities in the registry. Each dispatch runs
// under a bounded timeout supplied through ctx; side effects (email, database
// writes) are strictly the executor's responsibility, never the
// orchestrator's.
type CapabilityExecutor interface {
	Execute(ctx context.Context, in TaskInput) (TaskOutput, error)
}

// ExecutorFunc adapts a plain function to the CapabilityExecutor interface.
type ExecutorFunc func(ctx context.Context, in TaskInput) (TaskOutput, error)

// Execute implements CapabilityExecutor.
func (f ExecutorFunc) Execute(ctx context.Context, in TaskInput) (TaskOutput, error) {
	return f(ctx, in)
}
