// Package hireflow provides a high-level façade over the orchestration
// pipeline (routing, decomposition, plan execution, memory and response
// assembly) for building an LLM-backed hiring assistant. Most applications
// interact with this package by:
//  1. Creating a HireFlow via New() with a model backend (optionally
//     overriding the default in-memory stores)
//  2. Calling Process() per user utterance within a session
//  3. Optionally calling Cancel() to abort long multi-step requests
//
// The façade delegates each pipeline stage to its package while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply the sqlite store and a
// structured logger.
package hireflow

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/hireflow/assemble"
	"github.com/hupe1980/hireflow/capability"
	"github.com/hupe1980/hireflow/core"
	"github.com/hupe1980/hireflow/decompose"
	"github.com/hupe1980/hireflow/logging"
	"github.com/hupe1980/hireflow/memory"
	"github.com/hupe1980/hireflow/model"
	"github.com/hupe1980/hireflow/orchestrator"
	"github.com/hupe1980/hireflow/registry"
	"github.com/hupe1980/hireflow/router"
	"github.com/hupe1980/hireflow/store"
)

// Options configures the HireFlow instance.
type Options struct {
	// MemoryStore holds conversation history (defaults to in-memory).
	MemoryStore core.MemoryStore

	// Store holds hiring data: jobs, candidates, interviews (defaults to
	// in-memory).
	Store store.Store

	// Registry overrides the built-in capability registry. When nil the
	// built-in executors are wired against Store and the model.
	Registry *registry.Registry

	// RouterThreshold is the minimum routing confidence before the pipeline
	// asks a clarifying question instead.
	RouterThreshold float64

	// MaxConcurrency bounds parallel task dispatches within one plan.
	MaxConcurrency int

	// Retry governs rate-limit retries on model calls.
	Retry model.RetryPolicy

	// Logger (defaults to NoOp logger)
	Logger logging.Logger
}

// HireFlow is the high-level façade aggregating the pipeline stages.
type HireFlow struct {
	opts Options

	memory       core.MemoryStore
	router       *router.Router
	decomposer   *decompose.Decomposer
	orchestrator *orchestrator.Orchestrator
	assembler    *assemble.Assembler

	mu   sync.Mutex
	runs map[string]*run
}

// RunState describes what a session is currently doing.
type RunState string

const (
	// RunStateIdle means no request is being processed for the session.
	RunStateIdle RunState = "idle"
	// RunStateRunning means a request is in flight for the session.
	RunStateRunning RunState = "running"
)

type run struct {
	cancel context.CancelFunc
}

// New creates a HireFlow instance over a model backend. Any unset service is
// initialized with an in-memory implementation.
func New(m model.Model, optFns ...func(o *Options)) (*HireFlow, error) {
	opts := Options{
		Store:           store.NewInMemoryStore(),
		RouterThreshold: router.DefaultThreshold,
		MaxConcurrency:  4,
		Retry:           model.DefaultRetryPolicy(),
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MemoryStore == nil {
		opts.MemoryStore = memory.NewInMemoryStore(func(o *memory.Options) {
			o.Model = m
			o.Logger = opts.Logger
		})
	}

	reg := opts.Registry
	if reg == nil {
		var err error
		reg, err = capability.NewRegistry(m, opts.Store, func(o *capability.RegistryOptions) {
			o.Retry = opts.Retry
		})
		if err != nil {
			return nil, err
		}
	}

	return &HireFlow{
		opts:   opts,
		memory: opts.MemoryStore,
		router: router.New(m, func(o *router.Options) {
			o.Threshold = opts.RouterThreshold
			o.Retry = opts.Retry
			o.Logger = opts.Logger
		}),
		decomposer: decompose.New(),
		orchestrator: orchestrator.New(reg, func(o *orchestrator.Options) {
			o.MaxConcurrency = opts.MaxConcurrency
			o.Logger = opts.Logger
		}),
		assembler: assemble.New(reg),
		runs:      make(map[string]*run),
	}, nil
}

// Process handles one user utterance within a session: it records the turn,
// routes it to capability intents, decomposes them into a plan, executes the
// plan and assembles the reply. The returned response always carries a
// user-facing message; request-fatal pipeline errors are mapped through the
// error taxonomy rather than surfaced raw. The error return is reserved for
// infrastructure faults such as a broken memory store.
//
// One request per session runs at a time; a second concurrent Process call
// for the same session returns ErrSessionBusy.
func (h *HireFlow) Process(ctx context.Context, sessionID, utterance string) (*core.Response, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := h.beginRun(sessionID, cancel); err != nil {
		return nil, err
	}
	defer h.endRun(sessionID)

	if _, err := h.memory.Append(sessionID, core.NewTurn(sessionID, core.RoleUser, utterance)); err != nil {
		var dup *core.DuplicateTurnError
		if !errors.As(err, &dup) {
			return nil, err
		}
	}

	wc, err := h.memory.Summarize(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	intents, err := h.router.Route(ctx, utterance, wc)
	if err != nil {
		return h.reply(sessionID, h.assembler.Failure(err))
	}

	if len(intents) == 1 && intents[0].IsClarification() {
		return h.reply(sessionID, h.assembler.Clarify(intents[0].Clarification))
	}

	plan, err := h.decomposer.Decompose(intents, wc)
	if err != nil {
		return h.reply(sessionID, h.assembler.Failure(err))
	}

	report := h.orchestrator.Execute(ctx, plan, wc)
	resp := h.assembler.Assemble(report, wc)

	if slots := slotWriteback(report); len(slots) > 0 {
		if err := h.memory.ApplySlots(sessionID, slots); err != nil {
			return nil, err
		}
	}

	return h.reply(sessionID, resp)
}

// Cancel aborts the in-flight request for a session, if any. Tasks not yet
// dispatched are skipped; already-dispatched tasks run to completion. Returns
// false when the session has no request in flight.
func (h *HireFlow) Cancel(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.runs[sessionID]
	if !ok {
		return false
	}
	r.cancel()
	return true
}

// Status reports whether a session has a request in flight.
func (h *HireFlow) Status(sessionID string) RunState {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.runs[sessionID]; ok {
		return RunStateRunning
	}
	return RunStateIdle
}

// ErrSessionBusy is returned when a session already has a request in flight.
var ErrSessionBusy = errors.New("hireflow: session already has a request in flight")

func (h *HireFlow) beginRun(sessionID string, cancel context.CancelFunc) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, busy := h.runs[sessionID]; busy {
		return ErrSessionBusy
	}
	h.runs[sessionID] = &run{cancel: cancel}
	return nil
}

func (h *HireFlow) endRun(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.runs, sessionID)
}

// reply records the assistant turn and returns the response. A failed append
// does not discard the already-assembled response.
func (h *HireFlow) reply(sessionID string, resp *core.Response) (*core.Response, error) {
	if resp.Message != "" {
		if _, err := h.memory.Append(sessionID, core.NewTurn(sessionID, core.RoleAgent, resp.Message)); err != nil {
			h.opts.Logger.Warn("append agent turn failed", "session_id", sessionID, "error", err)
		}
	}
	return resp, nil
}

// slotWriteback extracts the well-known entity references from successful
// task outputs so follow-up turns can omit them ("schedule the interview").
// The last successful producer in plan order wins.
func slotWriteback(report *core.ExecutionReport) map[string]string {
	keys := map[string]string{
		"job_id":       core.SlotCurrentJobID,
		"candidate_id": core.SlotCurrentCandidateID,
		"interview_id": core.SlotCurrentInterviewID,
	}

	slots := make(map[string]string)
	for _, res := range report.Succeeded() {
		for out, slot := range keys {
			if v, ok := res.Output[out].(string); ok && v != "" {
				slots[slot] = v
			}
		}
	}
	return slots
}
