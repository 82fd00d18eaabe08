package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/repo-pilot/internal/core"
)

func TestPromptManager_EveryTaskHasAPrompt(t *testing.T) {
	pm, err := NewPromptManager()
	require.NoError(t, err)

	for _, task := range []core.Task{
		core.TaskIssueAnalysis,
		core.TaskPRReview,
		core.TaskCIAnalysis,
		core.TaskDocumentation,
		core.TaskTriage,
	} {
		_, err := pm.Get(PromptKeyFor(task), DefaultProvider)
		assert.NoError(t, err, "task %s", task)
	}
	assert.Len(t, pm.Keys(), 5)
}

func TestPromptManager_Triage(t *testing.T) {
	pm, err := NewPromptManager()
	require.NoError(t, err)

	out, err := pm.Render(PromptKeyFor(core.TaskTriage), DefaultProvider, promptData{
		Issue: &core.Issue{Title: "Fix this", User: core.User{Login: "bob"}},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Issue Body: No description provided.")
	assert.Contains(t, out, "Created By: bob")

	_, err = pm.Get("missing", DefaultProvider)
	assert.Error(t, err)
}
