package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/repo-pilot/internal/core"
)

func TestMemoryStore_IssueAnalysisUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.GetIssueAnalysis(ctx, "octo", "app", 1)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SaveIssueAnalysis(ctx, "octo", "app", 1, &core.IssueAnalysis{Analysis: "first"}))
	require.NoError(t, store.SaveIssueAnalysis(ctx, "octo", "app", 1, &core.IssueAnalysis{Analysis: "second"}))

	rec, err := store.GetIssueAnalysis(ctx, "octo", "app", 1)
	require.NoError(t, err)
	assert.Equal(t, "second", rec.Result.Analysis)
	assert.Equal(t, int64(1), rec.Number)
	assert.Equal(t, "octo", rec.RepoOwner)

	list, err := store.ListIssueAnalyses(ctx, "octo", "app")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryStore_ListIsScopedAndNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().(*memoryStore)

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	require.NoError(t, store.SaveCIAnalysis(ctx, "octo", "app", 10, &core.CIAnalysis{Analysis: "older"}))
	require.NoError(t, store.SaveCIAnalysis(ctx, "octo", "app", 11, &core.CIAnalysis{Analysis: "newer"}))
	require.NoError(t, store.SaveCIAnalysis(ctx, "octo", "other", 12, &core.CIAnalysis{Analysis: "elsewhere"}))

	list, err := store.ListCIAnalyses(ctx, "octo", "app")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Result.Analysis)
	assert.Equal(t, int64(10), list[1].Number)
}

func TestMemoryStore_ResultsAreCopied(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	review := &core.PRReview{Status: core.ReviewApprove, Score: 90}
	require.NoError(t, store.SavePRReview(ctx, "octo", "app", 3, review))
	review.Score = 10

	rec, err := store.GetPRReview(ctx, "octo", "app", 3)
	require.NoError(t, err)
	assert.Equal(t, 90, rec.Result.Score)
}

func TestMemoryStore_DocumentationAndProfile(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.SaveDocumentation(ctx, "octo", "app", &core.Documentation{Content: "# Overview"}))
	doc, err := store.GetDocumentation(ctx, "octo", "app")
	require.NoError(t, err)
	assert.Equal(t, "# Overview", doc.Result.Content)

	_, err = store.GetProfile(ctx, "alice")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SaveProfile(ctx, &Profile{UserID: "alice", GitHubPAT: "enc", GeminiModel: "gemini-3-pro-preview"}))
	p, err := store.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "enc", p.GitHubPAT)
	assert.False(t, p.UpdatedAt.IsZero())
}
