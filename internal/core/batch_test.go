package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/retold/internal/agent"
	"github.com/dotcommander/retold/internal/core"
	"github.com/dotcommander/retold/internal/domain/story"
)

func TestRunBatchKeepsJobOrderAndIsolatesFailures(t *testing.T) {
	mock := agent.NewMockClient()
	orch := newOrchestrator(t, mock, core.WithConfig(core.OrchestratorConfig{MaxConcurrentRuns: 3}))

	jobs := []core.Job{
		{Target: "Space Opera", Style: "epic"},
		{Target: "Wild West", Style: "limerick"},
		{Target: "Indian Education System", Style: "screenplay"},
		{Target: "x", Style: "narrative"},
	}

	results := orch.RunBatch(context.Background(), longStory, jobs)
	require.Len(t, results, len(jobs))

	for i, r := range results {
		assert.Equal(t, jobs[i], r.Job)
	}

	require.NoError(t, results[0].Err)
	assert.Equal(t, story.StyleEpic, results[0].Result.Style)
	assert.NotEmpty(t, results[0].Result.StoryText)

	var unknown *story.UnknownStyleError
	assert.ErrorAs(t, results[1].Err, &unknown)

	require.NoError(t, results[2].Err)
	assert.Equal(t, story.StyleScreenplay, results[2].Result.Style)

	var pe *core.PipelineError
	require.ErrorAs(t, results[3].Err, &pe)
	assert.Equal(t, core.StageMap, pe.Stage)

	// Two successful runs, three calls each; the failed jobs never reach the model.
	assert.Len(t, mock.Calls(), 6)
}

func TestRunBatchEmpty(t *testing.T) {
	orch := newOrchestrator(t, agent.NewMockClient())
	assert.Empty(t, orch.RunBatch(context.Background(), longStory, nil))
}

func TestRunBatchDistinctRunIDs(t *testing.T) {
	seen := make(chan string, 16)
	orch := newOrchestrator(t, agent.NewMockClient(),
		core.WithConfig(core.OrchestratorConfig{MaxConcurrentRuns: 2}),
		core.WithObserver(func(runID string, from, to core.State) {
			if to == core.StateDone {
				seen <- runID
			}
		}))

	results := orch.RunBatch(context.Background(), longStory, []core.Job{
		{Target: "Space Opera", Style: "epic"},
		{Target: "Space Opera", Style: "epic"},
	})
	close(seen)

	for _, r := range results {
		require.NoError(t, r.Err)
	}

	ids := map[string]bool{}
	for id := range seen {
		ids[id] = true
	}
	assert.Len(t, ids, 2)

	for _, r := range results {
		assert.True(t, ids[r.RunID], "batch result should carry the run ID seen by observers")
	}
}
