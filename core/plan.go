package core

import (
	"encoding/json"
	"fmt"
)

// OutputRef is a task parameter value that references a prior task's output
// field by task ID. References are resolved by the plan executor immediately
// before dispatch, once the referenced task has completed.
type OutputRef struct {
	TaskID string `json:"task_id"`
	Field  string `json:"field"`
}

// String renders the reference in $<task>.<field> form for logs and messages.
func (r OutputRef) String() string { return fmt.Sprintf("$%s.%s", r.TaskID, r.Field) }

// Guard is a deferred boolean predicate attached to a Task. It is evaluated
// against prior TaskResults immediately before dispatch, never pre-resolved
// during decomposition, so the condition always binds to fresh data.
type Guard struct {
	// TaskID names the task whose result the predicate inspects.
	TaskID string  `json:"task_id"`
	Field  string  `json:"field"`
	Op     string  `json:"op"`
	Value  float64 `json:"value"`
}

// Evaluate resolves the guard against the accumulated result set. It returns
// an error when the referenced result or field is absent or non-numeric; the
// executor treats evaluation errors like an unsatisfied guard with an
// explanatory skip reason.
func (g Guard) Evaluate(results map[string]TaskResult) (bool, error) {
	res, ok := results[g.TaskID]
	if !ok {
		return false, fmt.Errorf("guard references task %s with no result", g.TaskID)
	}
	if res.Status != TaskStatusSuccess {
		return false, fmt.Errorf("guard references task %s with status %s", g.TaskID, res.Status)
	}
	raw, ok := res.Output[g.Field]
	if !ok {
		return false, fmt.Errorf("guard references missing output field %q of task %s", g.Field, g.TaskID)
	}
	val, ok := toFloat(raw)
	if !ok {
		return false, fmt.Errorf("guard field %q of task %s is not numeric (%T)", g.Field, g.TaskID, raw)
	}
	switch g.Op {
	case ">":
		return val > g.Value, nil
	case ">=":
		return val >= g.Value, nil
	case "<":
		return val < g.Value, nil
	case "<=":
		return val <= g.Value, nil
	case "==":
		return val == g.Value, nil
	case "!=":
		return val != g.Value, nil
	default:
		return false, fmt.Errorf("unknown guard operator %q", g.Op)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Task is an atomic unit of work bound to exactly one capability. Parameters
// may contain OutputRef values referencing a prior task's output; DependsOn
// lists task IDs that must complete first.
type Task struct {
	ID         string         `json:"id"`
	Capability Capability     `json:"capability"`
	Parameters map[string]any `json:"parameters,omitempty"`
	DependsOn  []string       `json:"depends_on,omitempty"`
	Guard      *Guard         `json:"guard,omitempty"`
}

// Plan is an ordered, dependency-aware sequence of tasks produced by the
// decomposer for a single request. A plan and its tasks are owned by one
// execution and discarded after the ExecutionReport is produced; only the
// report's summary persists in session context.
//
// Invariant: the dependency graph is acyclic. Execution order is a
// topological sort consistent with declaration order for ties.
type Plan struct {
	ID    string `json:"id"`
	Tasks []Task `json:"tasks"`
}

// NewPlan creates a plan with a fresh ID.
func NewPlan(tasks []Task) *Plan {
	return &Plan{ID: NewID(), Tasks: tasks}
}

// Task returns the task with the given ID, or false if absent.
func (p *Plan) Task(id string) (Task, bool) {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Validate checks structural integrity: every dependency, output reference
// and guard must name a task declared in the plan, and the dependency graph
// must be acyclic. Violations are reported as *UnresolvableDependencyError
// before any execution occurs.
func (p *Plan) Validate() error {
	ids := make(map[string]struct{}, len(p.Tasks))
	for _, t := range p.Tasks {
		if _, dup := ids[t.ID]; dup {
			return &UnresolvableDependencyError{TaskID: t.ID, Reason: "duplicate task id"}
		}
		ids[t.ID] = struct{}{}
	}
	for _, t := range p.Tasks {
		for _, dep := range t.DependsOn {
			if _, ok := ids[dep]; !ok {
				return &UnresolvableDependencyError{
					TaskID: t.ID,
					Reason: fmt.Sprintf("depends on unknown task %s", dep),
				}
			}
		}
		for name, v := range t.Parameters {
			if ref, ok := v.(OutputRef); ok {
				if _, exists := ids[ref.TaskID]; !exists {
					return &UnresolvableDependencyError{
						TaskID: t.ID,
						Reason: fmt.Sprintf("parameter %q references unknown task %s", name, ref.TaskID),
					}
				}
			}
		}
		if t.Guard != nil {
			if _, ok := ids[t.Guard.TaskID]; !ok {
				return &UnresolvableDependencyError{
					TaskID: t.ID,
					Reason: fmt.Sprintf("guard references unknown task %s", t.Guard.TaskID),
				}
			}
		}
	}
	if p.hasCycle() {
		return &UnresolvableDependencyError{Reason: "dependency cycle", err: ErrCycleDetected}
	}
	return nil
}

// hasCycle detects circular dependencies using depth-first search with
// coloring to find back edges.
func (p *Plan) hasCycle() bool {
	// Color states: 0 = white (unvisited), 1 = gray (in progress), 2 = black.
	colors := make(map[string]int, len(p.Tasks))
	deps := p.depsByID()

	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = 1
		for _, dep := range deps[id] {
			switch colors[dep] {
			case 1:
				return true
			case 0:
				if visit(dep) {
					return true
				}
			}
		}
		colors[id] = 2
		return false
	}

	for _, t := range p.Tasks {
		if colors[t.ID] == 0 && visit(t.ID) {
			return true
		}
	}
	return false
}

// TopologicalOrder returns task IDs in an order where all dependencies come
// before the tasks that depend on them. Ties follow plan declaration order,
// making the result deterministic. Returns ErrCycleDetected via
// *UnresolvableDependencyError if the graph is cyclic.
func (p *Plan) TopologicalOrder() ([]string, error) {
	if p.hasCycle() {
		return nil, &UnresolvableDependencyError{Reason: "dependency cycle", err: ErrCycleDetected}
	}

	deps := p.depsByID()
	visited := make(map[string]bool, len(p.Tasks))
	order := make([]string, 0, len(p.Tasks))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range deps[id] {
			visit(dep)
		}
		order = append(order, id)
	}

	// Visiting in declaration order yields the declaration-order tie-break.
	for _, t := range p.Tasks {
		visit(t.ID)
	}
	return order, nil
}

// Dependents returns the IDs of tasks that depend on the given task, directly
// or through an output reference or guard.
func (p *Plan) Dependents(taskID string) []string {
	var out []string
	for _, t := range p.Tasks {
		if t.ID == taskID {
			continue
		}
		if containsString(p.effectiveDeps(t), taskID) {
			out = append(out, t.ID)
		}
	}
	return out
}

// EffectiveDeps returns the union of a task's declared dependencies, output
// references and guard source, deduplicated in first-seen order.
func (p *Plan) EffectiveDeps(t Task) []string { return p.effectiveDeps(t) }

func (p *Plan) effectiveDeps(t Task) []string {
	seen := make(map[string]struct{})
	var deps []string
	add := func(id string) {
		if _, ok := seen[id]; ok || id == t.ID {
			return
		}
		seen[id] = struct{}{}
		deps = append(deps, id)
	}
	for _, dep := range t.DependsOn {
		add(dep)
	}
	for _, v := range t.Parameters {
		if ref, ok := v.(OutputRef); ok {
			add(ref.TaskID)
		}
	}
	if t.Guard != nil {
		add(t.Guard.TaskID)
	}
	return deps
}

func (p *Plan) depsByID() map[string][]string {
	deps := make(map[string][]string, len(p.Tasks))
	for _, t := range p.Tasks {
		deps[t.ID] = p.effectiveDeps(t)
	}
	return deps
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
