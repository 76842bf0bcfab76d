package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hireflow/core"
)

// fakeDispatcher routes capabilities to scripted handlers and records
// dispatch order.
type fakeDispatcher struct {
	mu       sync.Mutex
	handlers map[core.Capability]func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error)
	timeout  time.Duration
	calls    []core.Capability
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		handlers: make(map[core.Capability]func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error)),
		timeout:  time.Second,
	}
}

func (f *fakeDispatcher) on(c core.Capability, fn func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error)) {
	f.handlers[c] = fn
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, c core.Capability, in core.TaskInput) (core.TaskOutput, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	if fn, ok := f.handlers[c]; ok {
		return fn(ctx, in)
	}
	return core.TaskOutput{Message: string(c) + " done"}, nil
}

func (f *fakeDispatcher) Timeout(core.Capability) time.Duration { return f.timeout }

func (f *fakeDispatcher) dispatched() []core.Capability {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Capability, len(f.calls))
	copy(out, f.calls)
	return out
}

func TestExecuteSingleTask(t *testing.T) {
	d := newFakeDispatcher()
	d.on(core.CapabilityJobDescription, func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		return core.TaskOutput{
			Data:    map[string]any{"job_id": "job-1"},
			Message: "Created job description.",
		}, nil
	})

	o := New(d)
	plan := core.NewPlan([]core.Task{{ID: "t1", Capability: core.CapabilityJobDescription}})
	report := o.Execute(context.Background(), plan, core.WorkingContext{})

	assert.Equal(t, core.ReportComplete, report.Status)
	require.Len(t, report.Results, 1)
	assert.Equal(t, core.TaskStatusSuccess, report.Results[0].Status)
	assert.Equal(t, "job-1", report.Results[0].Output["job_id"])
}

func TestExecuteResolvesOutputReferences(t *testing.T) {
	d := newFakeDispatcher()
	d.on(core.CapabilityScreening, func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		return core.TaskOutput{Data: map[string]any{"candidate_id": "cand-9", "match_score": 85.0}}, nil
	})

	var gotCandidate any
	d.on(core.CapabilityInterviewScheduling, func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		gotCandidate = in.Parameters["candidate_id"]
		return core.TaskOutput{Data: map[string]any{"interview_id": "iv-1"}}, nil
	})

	o := New(d)
	plan := core.NewPlan([]core.Task{
		{ID: "t1", Capability: core.CapabilityScreening},
		{
			ID:         "t2",
			Capability: core.CapabilityInterviewScheduling,
			Parameters: map[string]any{"candidate_id": core.OutputRef{TaskID: "t1", Field: "candidate_id"}},
			Guard:      &core.Guard{TaskID: "t1", Field: "match_score", Op: ">", Value: 80},
		},
	})

	report := o.Execute(context.Background(), plan, core.WorkingContext{})
	assert.Equal(t, core.ReportComplete, report.Status)
	assert.Equal(t, "cand-9", gotCandidate)
	assert.Equal(t, []core.Capability{core.CapabilityScreening, core.CapabilityInterviewScheduling}, d.dispatched())
}

func TestExecuteGuardNotSatisfied(t *testing.T) {
	d := newFakeDispatcher()
	d.on(core.CapabilityScreening, func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		return core.TaskOutput{Data: map[string]any{"match_score": 60.0}}, nil
	})

	o := New(d)
	plan := core.NewPlan([]core.Task{
		{ID: "t1", Capability: core.CapabilityScreening},
		{
			ID:         "t2",
			Capability: core.CapabilityInterviewScheduling,
			Guard:      &core.Guard{TaskID: "t1", Field: "match_score", Op: ">", Value: 80},
		},
	})

	report := o.Execute(context.Background(), plan, core.WorkingContext{})

	// A guard skip is a legitimate conditional outcome, not a failure.
	assert.Equal(t, core.ReportComplete, report.Status)

	res, ok := report.Result("t2")
	require.True(t, ok)
	assert.Equal(t, core.TaskStatusSkipped, res.Status)
	assert.Equal(t, core.SkipReasonGuardNotSatisfied, res.SkipReason)

	// The interview executor was never invoked.
	assert.Equal(t, []core.Capability{core.CapabilityScreening}, d.dispatched())
}

func TestExecuteDependencyFailureCascades(t *testing.T) {
	d := newFakeDispatcher()
	d.on(core.CapabilityScreening, func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		return core.TaskOutput{}, errors.New("screening blew up")
	})

	o := New(d)
	plan := core.NewPlan([]core.Task{
		{ID: "t1", Capability: core.CapabilityScreening},
		{ID: "t2", Capability: core.CapabilityInterviewScheduling, DependsOn: []string{"t1"}},
		{ID: "t3", Capability: core.CapabilityAnalytics, DependsOn: []string{"t2"}},
		{ID: "t4", Capability: core.CapabilityJobDescription}, // independent
	})

	report := o.Execute(context.Background(), plan, core.WorkingContext{})
	assert.Equal(t, core.ReportPartial, report.Status)

	r1, _ := report.Result("t1")
	assert.Equal(t, core.TaskStatusFailed, r1.Status)

	r2, _ := report.Result("t2")
	assert.Equal(t, core.TaskStatusSkipped, r2.Status)
	assert.Equal(t, core.SkipReasonDependencyFailed, r2.SkipReason)

	r3, _ := report.Result("t3")
	assert.Equal(t, core.TaskStatusSkipped, r3.Status)
	assert.Equal(t, core.SkipReasonDependencySkipped, r3.SkipReason)

	// Independent task still ran.
	r4, _ := report.Result("t4")
	assert.Equal(t, core.TaskStatusSuccess, r4.Status)
}

func TestExecuteResultsInDeclarationOrderUnderParallelism(t *testing.T) {
	d := newFakeDispatcher()
	// The first declared task finishes last.
	d.on(core.CapabilityJobDescription, func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		time.Sleep(30 * time.Millisecond)
		return core.TaskOutput{Message: "slow"}, nil
	})
	d.on(core.CapabilityAnalytics, func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		return core.TaskOutput{Message: "fast"}, nil
	})

	o := New(d, func(opts *Options) { opts.MaxConcurrency = 2 })
	plan := core.NewPlan([]core.Task{
		{ID: "t1", Capability: core.CapabilityJobDescription},
		{ID: "t2", Capability: core.CapabilityAnalytics},
	})

	report := o.Execute(context.Background(), plan, core.WorkingContext{})
	require.Len(t, report.Results, 2)
	assert.Equal(t, "t1", report.Results[0].TaskID)
	assert.Equal(t, "t2", report.Results[1].TaskID)
}

func TestExecuteTimeoutMarksTaskFailed(t *testing.T) {
	d := newFakeDispatcher()
	d.timeout = 20 * time.Millisecond
	d.on(core.CapabilityAnalytics, func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		select {
		case <-ctx.Done():
			return core.TaskOutput{}, ctx.Err()
		case <-time.After(time.Second):
			return core.TaskOutput{}, nil
		}
	})

	o := New(d)
	plan := core.NewPlan([]core.Task{{ID: "t1", Capability: core.CapabilityAnalytics}})

	report := o.Execute(context.Background(), plan, core.WorkingContext{})
	assert.Equal(t, core.ReportFailed, report.Status)

	res, _ := report.Result("t1")
	assert.Equal(t, core.TaskStatusFailed, res.Status)
	assert.Contains(t, res.Error, "timed out")
}

func TestExecuteCancellationSkipsPendingTasks(t *testing.T) {
	d := newFakeDispatcher()

	ctx, cancel := context.WithCancel(context.Background())
	d.on(core.CapabilityScreening, func(dispatchCtx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		// Cancel the request while the first task is in flight; the dispatch
		// context is detached, so this call still completes.
		cancel()
		return core.TaskOutput{Data: map[string]any{"candidate_id": "cand-1"}}, nil
	})

	o := New(d)
	plan := core.NewPlan([]core.Task{
		{ID: "t1", Capability: core.CapabilityScreening},
		{ID: "t2", Capability: core.CapabilityInterviewScheduling, DependsOn: []string{"t1"}},
	})

	report := o.Execute(ctx, plan, core.WorkingContext{})

	r1, _ := report.Result("t1")
	assert.Equal(t, core.TaskStatusSuccess, r1.Status)

	r2, _ := report.Result("t2")
	assert.Equal(t, core.TaskStatusSkipped, r2.Status)
	assert.Equal(t, core.SkipReasonCancelled, r2.SkipReason)

	assert.Equal(t, core.ReportPartial, report.Status)
}

func TestExecuteAggregatesSuggestedActions(t *testing.T) {
	d := newFakeDispatcher()
	d.on(core.CapabilityJobDescription, func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		return core.TaskOutput{SuggestedNext: []string{"Post to job boards", "Start screening candidates"}}, nil
	})
	d.on(core.CapabilityAnalytics, func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		return core.TaskOutput{SuggestedNext: []string{"Post to job boards"}}, nil
	})

	o := New(d)
	plan := core.NewPlan([]core.Task{
		{ID: "t1", Capability: core.CapabilityJobDescription},
		{ID: "t2", Capability: core.CapabilityAnalytics},
	})

	report := o.Execute(context.Background(), plan, core.WorkingContext{})
	assert.Equal(t, []string{"Post to job boards", "Start screening candidates"}, report.NextActions)
}

func TestExecuteMixedSkipAndDispatchWave(t *testing.T) {
	// Wave two pairs an in-flight dispatch (t3) with a main-loop dependency
	// skip (t4); both outcomes must land without the goroutines and the wave
	// loop contending on shared state.
	d := newFakeDispatcher()
	d.on(core.CapabilityJobDescription, func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		return core.TaskOutput{Data: map[string]any{"job_id": "job-1"}}, nil
	})
	d.on(core.CapabilityScreening, func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		return core.TaskOutput{}, errors.New("screen failed")
	})
	d.on(core.CapabilityInterviewScheduling, func(ctx context.Context, in core.TaskInput) (core.TaskOutput, error) {
		time.Sleep(30 * time.Millisecond)
		return core.TaskOutput{Data: map[string]any{"interview_id": "iv-1"}}, nil
	})

	o := New(d)
	plan := core.NewPlan([]core.Task{
		{ID: "t1", Capability: core.CapabilityJobDescription},
		{ID: "t2", Capability: core.CapabilityScreening},
		{ID: "t3", Capability: core.CapabilityInterviewScheduling, DependsOn: []string{"t1"}},
		{ID: "t4", Capability: core.CapabilityAnalytics, DependsOn: []string{"t2"}},
	})
	report := o.Execute(context.Background(), plan, core.WorkingContext{})

	require.Len(t, report.Results, 4)
	assert.Equal(t, core.TaskStatusSuccess, report.Results[0].Status)
	assert.Equal(t, core.TaskStatusFailed, report.Results[1].Status)
	assert.Equal(t, core.TaskStatusSuccess, report.Results[2].Status)
	assert.Equal(t, core.TaskStatusSkipped, report.Results[3].Status)
	assert.Equal(t, core.SkipReasonDependencyFailed, report.Results[3].SkipReason)
	assert.Equal(t, core.ReportPartial, report.Status)

	assert.NotContains(t, d.dispatched(), core.CapabilityAnalytics)
}
