package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/sevigo/repo-pilot/internal/core"
)

func TestResponseSchema_PRReview(t *testing.T) {
	s, err := ResponseSchema(core.TaskPRReview)
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"status", "feedback", "score", "shouldProposeFix"}, s.Required)
	assert.Equal(t, []string{"status", "feedback", "score", "criticalIssues", "shouldProposeFix", "fix"}, s.PropertyOrdering)

	status := s.Properties["status"]
	assert.Equal(t, []string{"approve", "request_changes", "comment"}, status.Enum)

	score := s.Properties["score"]
	assert.Equal(t, genai.TypeInteger, score.Type)
	require.NotNil(t, score.Minimum)
	require.NotNil(t, score.Maximum)
	assert.InDelta(t, 0, *score.Minimum, 0)
	assert.InDelta(t, 100, *score.Maximum, 0)

	fix := s.Properties["fix"]
	require.NotNil(t, fix)
	assert.ElementsMatch(t, []string{"commitMessage", "branchName", "prTitle", "prBody", "changes"}, fix.Required)
	changes := fix.Properties["changes"]
	assert.Equal(t, genai.TypeArray, changes.Type)
	assert.ElementsMatch(t, []string{"filePath", "newContent"}, changes.Items.Required)
}

func TestResponseSchema_Tasks(t *testing.T) {
	tests := []struct {
		task     core.Task
		required []string
	}{
		{task: core.TaskIssueAnalysis, required: []string{"analysis", "suggestedFix", "complexity", "shouldProposeFix"}},
		{task: core.TaskCIAnalysis, required: []string{"analysis", "suggestedFix", "shouldProposeFix"}},
		{task: core.TaskTriage, required: []string{"needsInfo", "missingInfoReason", "question"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.task), func(t *testing.T) {
			s, err := ResponseSchema(tt.task)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.required, s.Required)
		})
	}

	docs, err := ResponseSchema(core.TaskDocumentation)
	require.NoError(t, err)
	assert.Nil(t, docs)

	_, err = ResponseSchema(core.Task("unknown"))
	assert.Error(t, err)
}
