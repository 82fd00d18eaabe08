package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/repo-pilot/internal/core"
)

const reviewDiff = `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1 +1 @@
-package main
+package main // edited
diff --git a/secret.go b/secret.go
--- a/secret.go
+++ b/secret.go
`

func TestReviewPullRequest_FileFailureIsInlined(t *testing.T) {
	f := newFixture(t, func(t *testing.T, prompt string) string {
		assert.Contains(t, prompt, "--- File: main.go ---\npackage main // edited\n")
		assert.Contains(t, prompt, "--- File: secret.go ---\nError: Could not fetch content. ")
		return `{"status": "comment", "feedback": "Looks fine.", "score": 72, "criticalIssues": [], "shouldProposeFix": false}`
	})
	ctx := context.Background()

	f.gh.EXPECT().GetPullRequest(gomock.Any(), "octo", "app", 3).Return(&core.PullRequest{Number: 3, Title: "Edit", HeadRef: "feature"}, nil)
	f.gh.EXPECT().GetPullRequestDiff(gomock.Any(), "octo", "app", 3).Return(reviewDiff)
	f.gh.EXPECT().GetFileContent(gomock.Any(), "octo", "app", "main.go", "feature").
		Return(core.FileContent{Content: "package main // edited\n", SHA: "a"}, nil)
	f.gh.EXPECT().GetFileContent(gomock.Any(), "octo", "app", "secret.go", "feature").
		Return(core.FileContent{}, &core.RemoteHostError{Op: "get file content", Status: 403, Body: "forbidden"})
	f.gh.EXPECT().GetRepository(gomock.Any(), "octo", "app").Return(&core.Repository{Owner: "octo", Name: "app", DefaultBranch: "main"}, nil)
	f.expectNoRepoConfig("main")

	review, err := f.svc.ReviewPullRequest(ctx, testSession, "octo", "app", 3)
	require.NoError(t, err)
	assert.Equal(t, 72, review.Score)

	rec, err := f.store.GetPRReview(ctx, "octo", "app", 3)
	require.NoError(t, err)
	assert.Equal(t, core.ReviewComment, rec.Result.Status)
}

func TestAnalyzeWorkflowRun_NoFailedJob(t *testing.T) {
	f := newFixture(t, nil)

	f.gh.EXPECT().ListWorkflowJobs(gomock.Any(), "octo", "app", int64(77)).Return([]*core.WorkflowJob{
		{ID: 1, Conclusion: "success"},
		{ID: 2, Conclusion: "skipped"},
	}, nil)

	analysis, err := f.svc.AnalyzeWorkflowRun(context.Background(), testSession, "octo", "app", 77)
	require.NoError(t, err)
	assert.Equal(t, &core.CIAnalysis{Analysis: NoFailedJob}, analysis)
	assert.Zero(t, f.gen.calls)
}

func TestAnalyzeWorkflowRun_FirstFailedJob(t *testing.T) {
	f := newFixture(t, func(t *testing.T, prompt string) string {
		assert.Contains(t, prompt, "undefined: foo")
		assert.Contains(t, prompt, "[FILE] go.mod")
		return `{"analysis": "Build breaks on an undefined symbol.", "suggestedFix": "Define foo.", "shouldProposeFix": false}`
	})
	ctx := context.Background()

	f.gh.EXPECT().ListWorkflowJobs(gomock.Any(), "octo", "app", int64(78)).Return([]*core.WorkflowJob{
		{ID: 1, Conclusion: "success"},
		{ID: 2, Conclusion: "failure"},
		{ID: 3, Conclusion: "failure"},
	}, nil)
	f.gh.EXPECT().GetJobLogs(gomock.Any(), "octo", "app", int64(2)).Return("./main.go:4:2: undefined: foo", nil)
	f.gh.EXPECT().GetRepository(gomock.Any(), "octo", "app").Return(&core.Repository{Owner: "octo", Name: "app", DefaultBranch: "main"}, nil)
	f.expectNoRepoConfig("main")
	f.gh.EXPECT().GetRepoStructure(gomock.Any(), "octo", "app", "main").Return([]core.TreeEntry{{Path: "go.mod", Type: core.EntryTypeBlob}}, nil)

	analysis, err := f.svc.AnalyzeWorkflowRun(ctx, testSession, "octo", "app", 78)
	require.NoError(t, err)
	assert.Equal(t, "Build breaks on an undefined symbol.", analysis.Analysis)

	_, err = f.store.GetCIAnalysis(ctx, "octo", "app", 78)
	assert.NoError(t, err)
}

func TestGenerateDocumentation_MissingReadme(t *testing.T) {
	f := newFixture(t, func(t *testing.T, prompt string) string {
		assert.Contains(t, prompt, noReadme)
		return "```markdown\n# App\n```"
	})
	ctx := context.Background()

	f.gh.EXPECT().GetRepository(gomock.Any(), "octo", "app").Return(&core.Repository{Owner: "octo", Name: "app", DefaultBranch: "main"}, nil)
	f.gh.EXPECT().GetReadme(gomock.Any(), "octo", "app").Return("", &core.RemoteHostError{Op: "get readme", Status: 404})

	doc, err := f.svc.GenerateDocumentation(ctx, testSession, "octo", "app")
	require.NoError(t, err)
	assert.Equal(t, "# App", doc.Content)

	rec, err := f.store.GetDocumentation(ctx, "octo", "app")
	require.NoError(t, err)
	assert.Equal(t, "# App", rec.Result.Content)
}
