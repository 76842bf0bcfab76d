package testutil

import (
	"github.com/hupe1980/hireflow/core"
)

// PlanBuilder provides a fluent helper for constructing plans in tests.
// Example:
//
//	plan := NewPlanBuilder().
//		Task("t1", core.CapabilityScreening, map[string]any{"job_id": "j1"}).
//		GuardedTask("t2", core.CapabilityInterviewScheduling, nil, "t1", "match_score", ">", 80).
//		Build()
//
// Chain only the parts you need; IDs and parameters are taken as given.
type PlanBuilder struct {
	id    string
	tasks []core.Task
}

// NewPlanBuilder creates a builder with a fresh plan ID.
func NewPlanBuilder() *PlanBuilder { return &PlanBuilder{id: core.NewID()} }

// ID overrides the auto-generated plan ID (chainable).
func (b *PlanBuilder) ID(id string) *PlanBuilder { b.id = id; return b }

// Task appends a task with no dependencies (chainable).
func (b *PlanBuilder) Task(id string, c core.Capability, params map[string]any) *PlanBuilder {
	b.tasks = append(b.tasks, core.Task{ID: id, Capability: c, Parameters: params})
	return b
}

// DependentTask appends a task with explicit dependencies (chainable).
func (b *PlanBuilder) DependentTask(id string, c core.Capability, params map[string]any, deps ...string) *PlanBuilder {
	b.tasks = append(b.tasks, core.Task{ID: id, Capability: c, Parameters: params, DependsOn: deps})
	return b
}

// GuardedTask appends a task guarded by a predicate over a prior task's
// output field (chainable).
func (b *PlanBuilder) GuardedTask(id string, c core.Capability, params map[string]any, source, field, op string, value float64) *PlanBuilder {
	b.tasks = append(b.tasks, core.Task{
		ID:         id,
		Capability: c,
		Parameters: params,
		Guard:      &core.Guard{TaskID: source, Field: field, Op: op, Value: value},
	})
	return b
}

// Build assembles the plan.
func (b *PlanBuilder) Build() *core.Plan {
	return &core.Plan{ID: b.id, Tasks: b.tasks}
}

// Ref is shorthand for an output reference parameter value.
func Ref(taskID, field string) core.OutputRef {
	return core.OutputRef{TaskID: taskID, Field: field}
}

// SuccessResult builds a successful task result with the given output.
func SuccessResult(taskID string, c core.Capability, output map[string]any) core.TaskResult {
	return core.TaskResult{
		TaskID:     taskID,
		Capability: c,
		Status:     core.TaskStatusSuccess,
		Output:     output,
	}
}

// FailedResult builds a failed task result.
func FailedResult(taskID string, c core.Capability, errText string) core.TaskResult {
	return core.TaskResult{
		TaskID:     taskID,
		Capability: c,
		Status:     core.TaskStatusFailed,
		Error:      errText,
	}
}
