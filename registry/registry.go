// Package registry implements the static capability registry that maps each
// dispatchable capability tag to its executor, parameter schema, declared
// outputs, dispatch timeout and canned next-action suggestions. The table is
// validated once at build time so misconfiguration fails fast instead of at
// dispatch.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/hireflow/core"
	"github.com/hupe1980/hireflow/internal/util"
)

// DefaultTimeout bounds a dispatch when an entry declares none.
const DefaultTimeout = 30 * time.Second

// Entry binds a capability tag to everything the orchestrator and assembler
// need to know about it.
type Entry struct {
	Capability  core.Capability
	Description string

	// Parameters is a JSON schema validated against task parameters at
	// dispatch time.
	Parameters map[string]any

	// Outputs names the fields the executor's TaskOutput.Data is expected to
	// carry. Output references in plans are checked against this list.
	Outputs []string

	Executor core.CapabilityExecutor
	Timeout  time.Duration

	// NextActions are static follow-up suggestions attached to every
	// successful run of this capability.
	NextActions []string
}

// Registry is an immutable capability table. Safe for concurrent use.
type Registry struct {
	entries map[core.Capability]Entry
	order   []core.Capability
}

// New builds a registry from entries, rejecting unknown capability tags,
// duplicates and nil executors.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[core.Capability]Entry, len(entries))}

	for _, entry := range entries {
		if !entry.Capability.Valid() {
			return nil, fmt.Errorf("registry: unknown capability %q", entry.Capability)
		}
		if !entry.Capability.Dispatchable() {
			return nil, fmt.Errorf("registry: capability %q is not dispatchable", entry.Capability)
		}
		if _, exists := r.entries[entry.Capability]; exists {
			return nil, fmt.Errorf("registry: duplicate capability %q", entry.Capability)
		}
		if entry.Executor == nil {
			return nil, fmt.Errorf("registry: nil executor for capability %q", entry.Capability)
		}

		if entry.Timeout <= 0 {
			entry.Timeout = DefaultTimeout
		}

		r.entries[entry.Capability] = entry
		r.order = append(r.order, entry.Capability)
	}

	return r, nil
}

// MustNew is New that panics on configuration errors. Intended for static
// wiring where the table is fixed at compile time.
func MustNew(entries ...Entry) *Registry {
	r, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// Entry returns the entry for a capability.
func (r *Registry) Entry(c core.Capability) (Entry, bool) {
	entry, ok := r.entries[c]
	return entry, ok
}

// Capabilities returns registered tags in registration order.
func (r *Registry) Capabilities() []core.Capability {
	out := make([]core.Capability, len(r.order))
	copy(out, r.order)
	return out
}

// Outputs returns the declared output fields for a capability, or nil when
// the capability is not registered. Used by plan validation to reject output
// references against fields no executor produces.
func (r *Registry) Outputs(c core.Capability) []string {
	entry, ok := r.entries[c]
	if !ok {
		return nil
	}
	return entry.Outputs
}

// Timeout returns the dispatch timeout for a capability, falling back to
// DefaultTimeout for unregistered tags.
func (r *Registry) Timeout(c core.Capability) time.Duration {
	if entry, ok := r.entries[c]; ok {
		return entry.Timeout
	}
	return DefaultTimeout
}

// NextActions returns the static suggestions for a capability.
func (r *Registry) NextActions(c core.Capability) []string {
	entry, ok := r.entries[c]
	if !ok {
		return nil
	}
	out := make([]string, len(entry.NextActions))
	copy(out, entry.NextActions)
	return out
}

// Dispatch validates input parameters against the entry schema and invokes
// the executor. The caller is responsible for deadline management; Dispatch
// itself does not apply the entry timeout.
func (r *Registry) Dispatch(ctx context.Context, c core.Capability, input core.TaskInput) (core.TaskOutput, error) {
	entry, ok := r.entries[c]
	if !ok {
		return core.TaskOutput{}, fmt.Errorf("registry: capability %q not registered", c)
	}

	if entry.Parameters != nil {
		if err := util.ValidateParameters(input.Parameters, entry.Parameters); err != nil {
			return core.TaskOutput{}, &core.ExecutorFailure{Capability: c, Err: err}
		}
	}

	out, err := entry.Executor.Execute(ctx, input)
	if err != nil {
		return core.TaskOutput{}, &core.ExecutorFailure{Capability: c, Err: err}
	}

	return out, nil
}
