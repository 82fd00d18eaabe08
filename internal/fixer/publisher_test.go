package fixer

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/github"
	"github.com/sevigo/repo-pilot/mocks"
)

var repo = core.Repository{Owner: "octo", Name: "app", DefaultBranch: "main"}

func proposal() *core.FixProposal {
	return &core.FixProposal{
		CommitMessage: "fix: guard nil config",
		BranchName:    "ai-fix/issue-7-nil-config",
		PRTitle:       "Guard nil config",
		PRBody:        "Adds a nil check.",
		Changes: []core.FileChange{
			{FilePath: "cmd/main.go", NewContent: "package main\n"},
			{FilePath: "internal/config/config.go", NewContent: "package config\n"},
		},
	}
}

func newPublisher() *Publisher {
	return NewPublisher(slog.New(slog.DiscardHandler))
}

func TestApply_CallOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	gh := mocks.NewMockClient(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		gh.EXPECT().GetBranchHead(ctx, "octo", "app", "main").
			Return(&github.BranchHead{CommitSHA: "base-commit", TreeSHA: "base-tree"}, nil),
		gh.EXPECT().CreateBranch(ctx, "octo", "app", "ai-fix/issue-7-nil-config", "base-commit").Return(nil),
		gh.EXPECT().CreateBlob(ctx, "octo", "app", "package main\n").Return("blob-1", nil),
		gh.EXPECT().CreateBlob(ctx, "octo", "app", "package config\n").Return("blob-2", nil),
		gh.EXPECT().CreateTree(ctx, "octo", "app", "base-tree", []core.TreeEntry{
			{Path: "cmd/main.go", Type: core.EntryTypeBlob, SHA: "blob-1"},
			{Path: "internal/config/config.go", Type: core.EntryTypeBlob, SHA: "blob-2"},
		}).Return("new-tree", nil),
		gh.EXPECT().CreateCommit(ctx, "octo", "app", "fix: guard nil config", "new-tree", "base-commit").Return("new-commit", nil),
		gh.EXPECT().UpdateRef(ctx, "octo", "app", "ai-fix/issue-7-nil-config", "new-commit").Return(nil),
		gh.EXPECT().CreatePullRequest(ctx, "octo", "app", github.NewPullRequest{
			Title: "Guard nil config",
			Body:  "Adds a nil check.",
			Head:  "ai-fix/issue-7-nil-config",
			Base:  "main",
		}).Return(&core.PullRequest{Number: 12, HTMLURL: "https://github.com/octo/app/pull/12"}, nil),
	)

	result, err := newPublisher().Apply(ctx, gh, repo, proposal())
	require.NoError(t, err)
	assert.Equal(t, &core.PublishResult{
		Success:    true,
		PRURL:      "https://github.com/octo/app/pull/12",
		BranchName: "ai-fix/issue-7-nil-config",
		CommitSHA:  "new-commit",
	}, result)
}

func TestApply_TreeFailureStopsSequence(t *testing.T) {
	ctrl := gomock.NewController(t)
	gh := mocks.NewMockClient(ctrl)
	ctx := context.Background()
	treeErr := &core.RemoteHostError{Op: "create tree", Status: 422, Body: `{"message":"tree.sha is invalid"}`}

	gomock.InOrder(
		gh.EXPECT().GetBranchHead(ctx, "octo", "app", "main").
			Return(&github.BranchHead{CommitSHA: "base-commit", TreeSHA: "base-tree"}, nil),
		gh.EXPECT().CreateBranch(ctx, "octo", "app", gomock.Any(), "base-commit").Return(nil),
		gh.EXPECT().CreateBlob(ctx, "octo", "app", gomock.Any()).Return("blob-1", nil),
		gh.EXPECT().CreateBlob(ctx, "octo", "app", gomock.Any()).Return("blob-2", nil),
		gh.EXPECT().CreateTree(ctx, "octo", "app", "base-tree", gomock.Any()).Return("", treeErr),
	)
	gh.EXPECT().CreateCommit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	gh.EXPECT().UpdateRef(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	gh.EXPECT().CreatePullRequest(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	result, err := newPublisher().Apply(ctx, gh, repo, proposal())
	assert.Nil(t, result)

	var fixErr *core.FixApplicationError
	require.ErrorAs(t, err, &fixErr)
	assert.Equal(t, StepCreateTree, fixErr.Step)

	var remoteErr *core.RemoteHostError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, 422, remoteErr.Status)
}

func TestApply_FailureAtEachStep(t *testing.T) {
	boom := errors.New("boom")
	head := &github.BranchHead{CommitSHA: "c", TreeSHA: "t"}

	tests := []struct {
		name   string
		step   string
		expect func(gh *mocks.MockClient)
	}{
		{
			name: "base resolution",
			step: StepResolveBase,
			expect: func(gh *mocks.MockClient) {
				gh.EXPECT().GetBranchHead(gomock.Any(), "octo", "app", "main").Return(nil, boom)
			},
		},
		{
			name: "branch creation",
			step: StepCreateBranch,
			expect: func(gh *mocks.MockClient) {
				gh.EXPECT().GetBranchHead(gomock.Any(), "octo", "app", "main").Return(head, nil)
				gh.EXPECT().CreateBranch(gomock.Any(), "octo", "app", gomock.Any(), "c").Return(boom)
			},
		},
		{
			name: "second blob",
			step: StepCreateBlobs,
			expect: func(gh *mocks.MockClient) {
				gh.EXPECT().GetBranchHead(gomock.Any(), "octo", "app", "main").Return(head, nil)
				gh.EXPECT().CreateBranch(gomock.Any(), "octo", "app", gomock.Any(), "c").Return(nil)
				gomock.InOrder(
					gh.EXPECT().CreateBlob(gomock.Any(), "octo", "app", "package main\n").Return("b1", nil),
					gh.EXPECT().CreateBlob(gomock.Any(), "octo", "app", "package config\n").Return("", boom),
				)
			},
		},
		{
			name: "ref update",
			step: StepUpdateRef,
			expect: func(gh *mocks.MockClient) {
				gh.EXPECT().GetBranchHead(gomock.Any(), "octo", "app", "main").Return(head, nil)
				gh.EXPECT().CreateBranch(gomock.Any(), "octo", "app", gomock.Any(), "c").Return(nil)
				gh.EXPECT().CreateBlob(gomock.Any(), "octo", "app", gomock.Any()).Return("b", nil).Times(2)
				gh.EXPECT().CreateTree(gomock.Any(), "octo", "app", "t", gomock.Any()).Return("nt", nil)
				gh.EXPECT().CreateCommit(gomock.Any(), "octo", "app", gomock.Any(), "nt", "c").Return("nc", nil)
				gh.EXPECT().UpdateRef(gomock.Any(), "octo", "app", gomock.Any(), "nc").Return(boom)
			},
		},
		{
			name: "pull request",
			step: StepCreatePR,
			expect: func(gh *mocks.MockClient) {
				gh.EXPECT().GetBranchHead(gomock.Any(), "octo", "app", "main").Return(head, nil)
				gh.EXPECT().CreateBranch(gomock.Any(), "octo", "app", gomock.Any(), "c").Return(nil)
				gh.EXPECT().CreateBlob(gomock.Any(), "octo", "app", gomock.Any()).Return("b", nil).Times(2)
				gh.EXPECT().CreateTree(gomock.Any(), "octo", "app", "t", gomock.Any()).Return("nt", nil)
				gh.EXPECT().CreateCommit(gomock.Any(), "octo", "app", gomock.Any(), "nt", "c").Return("nc", nil)
				gh.EXPECT().UpdateRef(gomock.Any(), "octo", "app", gomock.Any(), "nc").Return(nil)
				gh.EXPECT().CreatePullRequest(gomock.Any(), "octo", "app", gomock.Any()).Return(nil, boom)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			gh := mocks.NewMockClient(ctrl)
			tt.expect(gh)

			_, err := newPublisher().Apply(context.Background(), gh, repo, proposal())
			var fixErr *core.FixApplicationError
			require.ErrorAs(t, err, &fixErr)
			assert.Equal(t, tt.step, fixErr.Step)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestApply_RejectsIncompleteProposal(t *testing.T) {
	ctrl := gomock.NewController(t)
	gh := mocks.NewMockClient(ctrl)

	p := proposal()
	p.Changes = nil

	_, err := newPublisher().Apply(context.Background(), gh, repo, p)
	var fixErr *core.FixApplicationError
	require.ErrorAs(t, err, &fixErr)
	assert.Equal(t, StepValidate, fixErr.Step)

	var vErr *core.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
