package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrCycleDetected indicates a circular dependency was found in a task plan.
var ErrCycleDetected = errors.New("circular dependency detected")

// Stable machine-readable error codes surfaced on user-visible responses.
// Raw error text never reaches the caller; UserMessage maps errors to a
// templated message plus one of these codes.
const (
	CodeOK                     = "ok"
	CodePartial                = "partial"
	CodeClarification          = "clarification_needed"
	CodeUnresolvableDependency = "unresolvable_dependency"
	CodeModelUnavailable       = "model_unavailable"
	CodeInternal               = "internal_error"
)

// DuplicateTurnError reports a rejected turn append whose ID was already
// present in the session log. The session context is left unchanged, making
// appends safely retryable.
type DuplicateTurnError struct {
	SessionID string
	TurnID    string
}

// Error implements the error interface.
func (e *DuplicateTurnError) Error() string {
	return fmt.Sprintf("duplicate turn %s in session %s", e.TurnID, e.SessionID)
}

// UnresolvableDependencyError reports a plan whose dependency graph is cyclic
// or references a nonexistent task. It is decomposition-time and fatal to the
// request, but session-preserving: the session and context remain usable for
// the next turn.
type UnresolvableDependencyError struct {
	TaskID string
	Reason string
	err    error
}

// Error implements the error interface.
func (e *UnresolvableDependencyError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("unresolvable dependency in task %s: %s", e.TaskID, e.Reason)
	}
	return fmt.Sprintf("unresolvable dependency: %s", e.Reason)
}

// Unwrap exposes the underlying cause (e.g. ErrCycleDetected).
func (e *UnresolvableDependencyError) Unwrap() error { return e.err }

// ExecutorTimeoutError reports a capability dispatch exceeding its bounded
// timeout. Task-level and contained: the task is marked failed without
// aborting sibling tasks.
type ExecutorTimeoutError struct {
	Capability Capability
	Timeout    time.Duration
}

// Error implements the error interface.
func (e *ExecutorTimeoutError) Error() string {
	return fmt.Sprintf("executor %s timed out after %s", e.Capability, e.Timeout)
}

// ExecutorFailure wraps an error returned by a capability executor. Contained
// like ExecutorTimeoutError.
type ExecutorFailure struct {
	Capability Capability
	Err        error
}

// Error implements the error interface.
func (e *ExecutorFailure) Error() string {
	return fmt.Sprintf("executor %s failed: %v", e.Capability, e.Err)
}

// Unwrap exposes the executor's underlying error.
func (e *ExecutorFailure) Unwrap() error { return e.Err }

// ModelUnavailableError reports exhausted retries against the language-model
// capability. This is the only condition that aborts an in-progress request
// outright, since no further routing or decomposition is possible.
type ModelUnavailableError struct {
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("language model unavailable after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap exposes the last underlying model error.
func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// UserMessage maps an internal error to a templated, role-appropriate message
// and a stable machine-readable code. Raw error text is never exposed.
func UserMessage(err error) (string, string) {
	var dep *UnresolvableDependencyError
	if errors.As(err, &dep) {
		return "I couldn't work out how to order the steps in that multi-step request. Could you rephrase it?", CodeUnresolvableDependency
	}
	var unavailable *ModelUnavailableError
	if errors.As(err, &unavailable) {
		return "The assistant is temporarily unavailable. Please try again in a moment.", CodeModelUnavailable
	}
	return "Something went wrong while processing your request. Please try again.", CodeInternal
}
