package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hupe1980/hireflow/core"
	"github.com/hupe1980/hireflow/logging"
)

// Dispatcher abstracts the capability registry for testability: capability
// dispatch plus its declared timeout.
type Dispatcher interface {
	Dispatch(ctx context.Context, c core.Capability, in core.TaskInput) (core.TaskOutput, error)
	Timeout(c core.Capability) time.Duration
}

// Options configure an Orchestrator.
type Options struct {
	// MaxConcurrency bounds parallel dispatches within one plan to respect
	// downstream request-per-minute ceilings.
	MaxConcurrency int

	Logger logging.Logger
}

// Orchestrator executes plans. Stateless between calls; one instance serves
// concurrent requests.
type Orchestrator struct {
	dispatcher Dispatcher
	opts       Options
}

// New creates an Orchestrator over a dispatcher.
func New(d Dispatcher, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		MaxConcurrency: 4,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	return &Orchestrator{dispatcher: d, opts: opts}
}

// Execute walks the plan in topological order. Ready tasks with no dependency
// relationship are dispatched concurrently in waves, bounded by the
// concurrency limit. Cancellation of ctx skips every not-yet-dispatched task
// with reason "cancelled" while in-flight dispatches run on to their own
// timeout. Results are reported in plan declaration order.
func (o *Orchestrator) Execute(ctx context.Context, plan *core.Plan, wc core.WorkingContext) *core.ExecutionReport {
	start := time.Now()

	report := &core.ExecutionReport{PlanID: plan.ID}

	if _, err := plan.TopologicalOrder(); err != nil {
		// Plans are validated at decomposition; a cycle here means the caller
		// skipped validation. Fail every task rather than guess an order.
		for _, t := range plan.Tasks {
			report.Results = append(report.Results, core.TaskResult{
				TaskID:     t.ID,
				Capability: t.Capability,
				Status:     core.TaskStatusFailed,
				Error:      err.Error(),
			})
		}
		report.Status = core.ReportFailed
		return report
	}

	results := make(map[string]core.TaskResult, len(plan.Tasks))
	sem := make(chan struct{}, o.opts.MaxConcurrency)

	for len(results) < len(plan.Tasks) {
		ready := readyTasks(plan, results)

		// Dispatch goroutines never touch the results map: parameters are
		// resolved before spawning (every dependency of a ready task already
		// completed in a prior wave) and outcomes land in a wave-local map,
		// merged only after the wave drains. Preflight skips collect
		// separately on this goroutine.
		var (
			mu   sync.Mutex
			wg   sync.WaitGroup
			wave = make(map[string]core.TaskResult, len(ready))
		)
		skips := make(map[string]core.TaskResult)

		for _, task := range ready {
			if res, done := o.preflight(ctx, plan, task, results); done {
				skips[task.ID] = res
				continue
			}

			params := resolveParameters(task, results)

			wg.Add(1)
			go func(task core.Task, params map[string]any) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				res := o.dispatch(ctx, task, params, wc)

				mu.Lock()
				wave[task.ID] = res
				mu.Unlock()
			}(task, params)
		}

		wg.Wait()

		for id, res := range skips {
			results[id] = res
		}
		for id, res := range wave {
			results[id] = res
		}
	}

	for _, t := range plan.Tasks {
		report.Results = append(report.Results, results[t.ID])
	}
	report.Status = overallStatus(report.Results)
	report.NextActions = suggestedActions(report.Results)

	if l, ok := o.opts.Logger.(*logging.HireFlowLogger); ok {
		l.LogPlanExecution(plan.ID, len(plan.Tasks), time.Since(start), string(report.Status))
	}

	return report
}

// readyTasks returns unprocessed tasks whose effective dependencies all have
// results, in plan declaration order.
func readyTasks(plan *core.Plan, results map[string]core.TaskResult) []core.Task {
	var ready []core.Task
	for _, t := range plan.Tasks {
		if _, done := results[t.ID]; done {
			continue
		}
		ok := true
		for _, dep := range plan.EffectiveDeps(t) {
			if _, done := results[dep]; !done {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, t)
		}
	}
	return ready
}

// preflight decides whether a ready task can be dispatched at all. It returns
// a terminal skip result for cancelled requests, failed or skipped
// dependencies, and unsatisfied guards.
func (o *Orchestrator) preflight(ctx context.Context, plan *core.Plan, task core.Task, results map[string]core.TaskResult) (core.TaskResult, bool) {
	res := core.TaskResult{
		TaskID:     task.ID,
		Capability: task.Capability,
		Status:     core.TaskStatusSkipped,
	}

	if ctx.Err() != nil {
		res.SkipReason = core.SkipReasonCancelled
		return res, true
	}

	for _, dep := range plan.EffectiveDeps(task) {
		switch results[dep].Status {
		case core.TaskStatusFailed:
			res.SkipReason = core.SkipReasonDependencyFailed
			return res, true
		case core.TaskStatusSkipped:
			res.SkipReason = core.SkipReasonDependencySkipped
			return res, true
		}
	}

	if task.Guard != nil {
		ok, err := task.Guard.Evaluate(results)
		if err != nil {
			res.SkipReason = core.SkipReasonGuardNotSatisfied
			res.Message = err.Error()
			return res, true
		}
		if !ok {
			res.SkipReason = core.SkipReasonGuardNotSatisfied
			return res, true
		}
	}

	return core.TaskResult{}, false
}

// dispatch runs one task against its executor under the capability timeout.
// The dispatch context is detached from the request context so cancellation
// never force-aborts an in-flight external call.
func (o *Orchestrator) dispatch(ctx context.Context, task core.Task, params map[string]any, wc core.WorkingContext) core.TaskResult {
	timeout := o.dispatcher.Timeout(task.Capability)
	dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	start := time.Now()

	out, err := o.dispatcher.Dispatch(dispatchCtx, task.Capability, core.TaskInput{
		Parameters: params,
		Context:    wc,
	})

	res := core.TaskResult{
		TaskID:     task.ID,
		Capability: task.Capability,
	}

	switch {
	case err == nil:
		res.Status = core.TaskStatusSuccess
		res.Output = out.Data
		res.Message = out.Message
		res.SuggestedNext = out.SuggestedNext
	case errors.Is(err, context.DeadlineExceeded):
		timeoutErr := &core.ExecutorTimeoutError{Capability: task.Capability, Timeout: timeout}
		res.Status = core.TaskStatusFailed
		res.Error = timeoutErr.Error()
	default:
		res.Status = core.TaskStatusFailed
		res.Error = err.Error()
	}

	if l, ok := o.opts.Logger.(*logging.HireFlowLogger); ok {
		l.LogTaskDispatch(string(task.Capability), task.ID, time.Since(start), string(res.Status), err)
	}

	return res
}

// resolveParameters replaces output references with the referenced task's
// actual output values. Dependencies are complete by the time a task is
// dispatched, so a missing field means the producer did not deliver what the
// plan promised; the raw reference string is passed through and left to the
// executor's parameter validation.
func resolveParameters(task core.Task, results map[string]core.TaskResult) map[string]any {
	params := make(map[string]any, len(task.Parameters))
	for name, v := range task.Parameters {
		ref, ok := v.(core.OutputRef)
		if !ok {
			params[name] = v
			continue
		}
		if out, exists := results[ref.TaskID].Output[ref.Field]; exists {
			params[name] = out
		} else {
			params[name] = ref.String()
		}
	}
	return params
}

func overallStatus(results []core.TaskResult) core.ReportStatus {
	var succeeded, failed, badSkips int
	for _, res := range results {
		switch res.Status {
		case core.TaskStatusSuccess:
			succeeded++
		case core.TaskStatusFailed:
			failed++
		case core.TaskStatusSkipped:
			if res.SkipReason != core.SkipReasonGuardNotSatisfied {
				badSkips++
			}
		}
	}

	// Guard skips are legitimate conditional outcomes and do not demote a
	// report from complete.
	switch {
	case failed == 0 && badSkips == 0:
		return core.ReportComplete
	case succeeded > 0:
		return core.ReportPartial
	default:
		return core.ReportFailed
	}
}

// suggestedActions collects executor-proposed follow-ups from successful
// tasks, deduplicated in report order.
func suggestedActions(results []core.TaskResult) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, res := range results {
		if res.Status != core.TaskStatusSuccess {
			continue
		}
		for _, action := range res.SuggestedNext {
			if _, dup := seen[action]; dup {
				continue
			}
			seen[action] = struct{}{}
			out = append(out, action)
		}
	}
	return out
}
