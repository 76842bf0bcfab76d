package decompose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hireflow/core"
)

func TestDecomposeSingleIntent(t *testing.T) {
	d := New()

	plan, err := d.Decompose([]core.Intent{{
		Capability: core.CapabilityJobDescription,
		Confidence: 0.95,
		Parameters: map[string]any{"title": "Senior Python Developer"},
	}}, core.WorkingContext{})

	require.NoError(t, err)
	require.Len(t, plan.Tasks, 1)
	assert.Equal(t, "t1", plan.Tasks[0].ID)
	assert.Equal(t, core.CapabilityJobDescription, plan.Tasks[0].Capability)
	assert.Nil(t, plan.Tasks[0].Guard)
}

func TestDecomposeGuardedPair(t *testing.T) {
	d := New()

	plan, err := d.Decompose([]core.Intent{
		{
			Capability: core.CapabilityScreening,
			Confidence: 0.9,
			Parameters: map[string]any{"job_id": "job_123", "resume": "..."},
		},
		{
			Capability: core.CapabilityInterviewScheduling,
			Confidence: 0.9,
			Parameters: map[string]any{"candidate_id": "$screening.candidate_id"},
			Condition: &core.Condition{
				Source: core.CapabilityScreening,
				Field:  "match_score",
				Op:     ">",
				Value:  80,
			},
		},
	}, core.WorkingContext{})

	require.NoError(t, err)
	require.Len(t, plan.Tasks, 2)

	interview := plan.Tasks[1]
	ref, ok := interview.Parameters["candidate_id"].(core.OutputRef)
	require.True(t, ok)
	assert.Equal(t, "t1", ref.TaskID)
	assert.Equal(t, "candidate_id", ref.Field)

	require.NotNil(t, interview.Guard)
	assert.Equal(t, "t1", interview.Guard.TaskID)
	assert.Equal(t, ">", interview.Guard.Op)

	assert.Equal(t, []string{"t1"}, plan.EffectiveDeps(interview))
}

func TestDecomposeBackfillsSlots(t *testing.T) {
	d := New()

	wc := core.WorkingContext{Slots: map[string]string{core.SlotCurrentJobID: "job-7"}}
	plan, err := d.Decompose([]core.Intent{{
		Capability: core.CapabilityScreening,
		Confidence: 0.9,
		Parameters: map[string]any{"resume": "..."},
	}}, wc)

	require.NoError(t, err)
	assert.Equal(t, "job-7", plan.Tasks[0].Parameters["job_id"])
}

func TestDecomposeExplicitParameterWinsOverSlot(t *testing.T) {
	d := New()

	wc := core.WorkingContext{Slots: map[string]string{core.SlotCurrentJobID: "job-7"}}
	plan, err := d.Decompose([]core.Intent{{
		Capability: core.CapabilityScreening,
		Confidence: 0.9,
		Parameters: map[string]any{"job_id": "job_123"},
	}}, wc)

	require.NoError(t, err)
	assert.Equal(t, "job_123", plan.Tasks[0].Parameters["job_id"])
}

func TestDecomposeDanglingReference(t *testing.T) {
	d := New()

	_, err := d.Decompose([]core.Intent{{
		Capability: core.CapabilityInterviewScheduling,
		Confidence: 0.9,
		Parameters: map[string]any{"candidate_id": "$screening.candidate_id"},
	}}, core.WorkingContext{})

	var dep *core.UnresolvableDependencyError
	require.True(t, errors.As(err, &dep))
}

func TestDecomposeConditionWithoutSourceTask(t *testing.T) {
	d := New()

	_, err := d.Decompose([]core.Intent{{
		Capability: core.CapabilityInterviewScheduling,
		Confidence: 0.9,
		Condition: &core.Condition{
			Source: core.CapabilityScreening,
			Field:  "match_score",
			Op:     ">",
			Value:  80,
		},
	}}, core.WorkingContext{})

	var dep *core.UnresolvableDependencyError
	require.True(t, errors.As(err, &dep))
	assert.Contains(t, dep.Reason, "no earlier task")
}

func TestDecomposeEmptyIntents(t *testing.T) {
	d := New()

	_, err := d.Decompose(nil, core.WorkingContext{})
	var dep *core.UnresolvableDependencyError
	require.True(t, errors.As(err, &dep))
}

func TestDecomposeRejectsClarification(t *testing.T) {
	d := New()

	_, err := d.Decompose([]core.Intent{core.NewClarificationIntent("which job?")}, core.WorkingContext{})
	var dep *core.UnresolvableDependencyError
	require.True(t, errors.As(err, &dep))
}
