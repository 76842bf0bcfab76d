package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hireflow/core"
	"github.com/hupe1980/hireflow/model"
)

func TestLoadCreatesSessionLazily(t *testing.T) {
	store := NewInMemoryStore()

	wc, err := store.Load("s1")
	require.NoError(t, err)
	assert.Empty(t, wc.Summary)
	assert.Empty(t, wc.Recent)
}

func TestAppendRefreshesRecentWindow(t *testing.T) {
	store := NewInMemoryStore(func(o *Options) { o.RecentWindow = 2 })

	for i := 0; i < 4; i++ {
		_, err := store.Append("s1", core.NewTurn("s1", core.RoleUser, fmt.Sprintf("turn %d", i)))
		require.NoError(t, err)
	}

	wc, err := store.Load("s1")
	require.NoError(t, err)
	require.Len(t, wc.Recent, 2)
	assert.Equal(t, "turn 2", wc.Recent[0].Text)
	assert.Equal(t, "turn 3", wc.Recent[1].Text)
}

func TestAppendRejectsDuplicateTurnID(t *testing.T) {
	store := NewInMemoryStore()

	turn := core.NewTurn("s1", core.RoleUser, "hello")
	_, err := store.Append("s1", turn)
	require.NoError(t, err)

	_, err = store.Append("s1", turn)
	var dup *core.DuplicateTurnError
	require.True(t, errors.As(err, &dup))

	wc, err := store.Load("s1")
	require.NoError(t, err)
	assert.Len(t, wc.Recent, 1)
}

func TestApplySlotsIsolatedPerSession(t *testing.T) {
	store := NewInMemoryStore()

	require.NoError(t, store.ApplySlots("s1", map[string]string{core.SlotCurrentJobID: "job-1"}))
	require.NoError(t, store.ApplySlots("s2", map[string]string{core.SlotCurrentJobID: "job-2"}))

	wc1, _ := store.Load("s1")
	wc2, _ := store.Load("s2")

	v1, _ := wc1.Slot(core.SlotCurrentJobID)
	v2, _ := wc2.Slot(core.SlotCurrentJobID)
	assert.Equal(t, "job-1", v1)
	assert.Equal(t, "job-2", v2)
}

func TestSummarizeBelowThresholdSkipsModel(t *testing.T) {
	m := model.NewMockModel() // any call would fail: no script
	store := NewInMemoryStore(func(o *Options) {
		o.Model = m
		o.DigestThreshold = 10
		o.RecentWindow = 4
	})

	for i := 0; i < 5; i++ {
		_, err := store.Append("s1", core.NewTurn("s1", core.RoleUser, fmt.Sprintf("turn %d", i)))
		require.NoError(t, err)
	}

	wc, err := store.Summarize(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, wc.Summary)
	assert.Len(t, wc.Recent, 4)
	assert.Empty(t, m.Calls())
}

func TestSummarizeDigestsOlderTurns(t *testing.T) {
	m := model.NewMockModel().AddResponse("User is hiring a backend engineer; job-1 was created.")
	store := NewInMemoryStore(func(o *Options) {
		o.Model = m
		o.DigestThreshold = 3
		o.RecentWindow = 2
	})

	for i := 0; i < 6; i++ {
		_, err := store.Append("s1", core.NewTurn("s1", core.RoleUser, fmt.Sprintf("turn %d", i)))
		require.NoError(t, err)
	}

	wc, err := store.Summarize(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "User is hiring a backend engineer; job-1 was created.", wc.Summary)
	require.Len(t, wc.Recent, 2)
	assert.Equal(t, "turn 4", wc.Recent[0].Text)

	// Second call hits the digest cache; the mock script is exhausted, so a
	// model call here would error.
	wc, err = store.Summarize(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, wc.Summary)
	assert.Len(t, m.Calls(), 1)
}

func TestSummarizeDegradesOnModelFailure(t *testing.T) {
	m := model.NewMockModel().AddError(errors.New("model down"))
	store := NewInMemoryStore(func(o *Options) {
		o.Model = m
		o.DigestThreshold = 2
		o.RecentWindow = 2
	})

	for i := 0; i < 5; i++ {
		_, err := store.Append("s1", core.NewTurn("s1", core.RoleUser, fmt.Sprintf("turn %d", i)))
		require.NoError(t, err)
	}

	wc, err := store.Summarize(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, wc.Summary)
	assert.Len(t, wc.Recent, 2)
}

func TestConcurrentAppendsAcrossSessions(t *testing.T) {
	store := NewInMemoryStore()

	var wg sync.WaitGroup
	for s := 0; s < 4; s++ {
		sessionID := fmt.Sprintf("s%d", s)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				_, err := store.Append(sessionID, core.NewTurn(sessionID, core.RoleUser, "x"))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	for s := 0; s < 4; s++ {
		wc, err := store.Load(fmt.Sprintf("s%d", s))
		require.NoError(t, err)
		assert.NotEmpty(t, wc.Recent)
	}
}
