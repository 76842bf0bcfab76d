// Package decompose expands a routed intent set into an ordered,
// dependency-aware plan of atomic tasks. Decomposition is pure: no model
// calls, no side effects. Conditional clauses extracted by the router become
// deferred guards, and "$capability.field" parameter values become typed
// output references bound to the producing task. Structural problems
// (dangling references, cycles) fail with *core.UnresolvableDependencyError
// before any execution occurs.
package decompose

import (
	"fmt"
	"strings"

	"github.com/hupe1980/hireflow/core"
)

// Options configure a Decomposer.
type Options struct {
	// Slots lists well-known working-context slot keys injected into task
	// parameters when the utterance did not specify them explicitly. Keyed by
	// parameter name.
	Slots map[string]string
}

// Decomposer turns intents into executable plans.
type Decomposer struct {
	opts Options
}

// New creates a Decomposer.
func New(optFns ...func(o *Options)) *Decomposer {
	opts := Options{
		Slots: map[string]string{
			"job_id":       core.SlotCurrentJobID,
			"candidate_id": core.SlotCurrentCandidateID,
			"interview_id": core.SlotCurrentInterviewID,
		},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Decomposer{opts: opts}
}

// Decompose builds a plan from intents: one task per intent in declaration
// order. Dependencies are inferred from output references and guard sources;
// missing parameters are back-filled from working-context slots. The
// clarification sentinel must be handled by the caller and never reaches
// decomposition.
func (d *Decomposer) Decompose(intents []core.Intent, wc core.WorkingContext) (*core.Plan, error) {
	if len(intents) == 0 {
		return nil, &core.UnresolvableDependencyError{Reason: "no intents to decompose"}
	}

	// Capability → task id, for binding references and guards. First
	// occurrence wins when a capability appears twice.
	taskByCap := make(map[core.Capability]string, len(intents))
	tasks := make([]core.Task, 0, len(intents))

	for i, intent := range intents {
		if intent.IsClarification() {
			return nil, &core.UnresolvableDependencyError{
				Reason: "clarification intent cannot be planned",
			}
		}

		id := fmt.Sprintf("t%d", i+1)
		if _, ok := taskByCap[intent.Capability]; !ok {
			taskByCap[intent.Capability] = id
		}

		task := core.Task{
			ID:         id,
			Capability: intent.Capability,
			Parameters: d.resolveParameters(intent, wc, taskByCap, id),
		}

		if intent.Condition != nil {
			sourceID, ok := taskByCap[intent.Condition.Source]
			if !ok || sourceID == id {
				return nil, &core.UnresolvableDependencyError{
					TaskID: id,
					Reason: fmt.Sprintf("condition references capability %q with no earlier task", intent.Condition.Source),
				}
			}
			task.Guard = &core.Guard{
				TaskID: sourceID,
				Field:  intent.Condition.Field,
				Op:     intent.Condition.Op,
				Value:  intent.Condition.Value,
			}
		}

		tasks = append(tasks, task)
	}

	plan := core.NewPlan(tasks)
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	return plan, nil
}

// resolveParameters copies intent parameters, rewriting "$capability.field"
// strings into typed output references and back-filling well-known ids from
// working-context slots.
func (d *Decomposer) resolveParameters(intent core.Intent, wc core.WorkingContext, taskByCap map[core.Capability]string, selfID string) map[string]any {
	params := make(map[string]any, len(intent.Parameters))

	for name, v := range intent.Parameters {
		if s, ok := v.(string); ok {
			if ref, ok := parseRef(s, taskByCap, selfID); ok {
				params[name] = ref
				continue
			}
		}
		params[name] = v
	}

	for param, slot := range d.opts.Slots {
		if _, present := params[param]; present {
			continue
		}
		if val, ok := wc.Slot(slot); ok && val != "" {
			params[param] = val
		}
	}

	return params
}

// parseRef recognizes "$capability.field" values. References to a capability
// without an earlier task (including self-references) are left untouched so
// plan validation reports them as unresolvable.
func parseRef(s string, taskByCap map[core.Capability]string, selfID string) (core.OutputRef, bool) {
	if !strings.HasPrefix(s, "$") {
		return core.OutputRef{}, false
	}

	body := strings.TrimPrefix(s, "$")
	dot := strings.Index(body, ".")
	if dot <= 0 || dot == len(body)-1 {
		return core.OutputRef{}, false
	}

	source, field := body[:dot], body[dot+1:]

	tag, err := core.ParseCapability(source)
	if err != nil {
		// Allow direct task-id references like "$t1.candidate_id".
		return core.OutputRef{TaskID: source, Field: field}, true
	}

	id, ok := taskByCap[tag]
	if !ok || id == selfID {
		return core.OutputRef{TaskID: string(tag), Field: field}, true
	}

	return core.OutputRef{TaskID: id, Field: field}, true
}
