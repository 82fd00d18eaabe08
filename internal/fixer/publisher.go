// Package fixer publishes a validated FixProposal as a branch, a commit and a pull
// request through the Git Data API.
package fixer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/github"
)

// Publish steps, reported in FixApplicationError.Step.
const (
	StepValidate     = "validate"
	StepResolveBase  = "resolve-base"
	StepCreateBranch = "create-branch"
	StepCreateBlobs  = "create-blobs"
	StepCreateTree   = "create-tree"
	StepCreateCommit = "create-commit"
	StepUpdateRef    = "update-ref"
	StepCreatePR     = "create-pull-request"
)

// Publisher turns proposals into pull requests.
type Publisher struct {
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{logger: logger}
}

// Apply runs the publish steps strictly in order against the default branch of
// repo. The first failure stops the sequence. Objects created before it, such as
// the branch, are left on the remote.
func (p *Publisher) Apply(ctx context.Context, gh github.GitWriter, repo core.Repository, proposal *core.FixProposal) (*core.PublishResult, error) {
	if err := proposal.Validate(); err != nil {
		return nil, &core.FixApplicationError{Step: StepValidate, Err: err}
	}
	if repo.DefaultBranch == "" {
		return nil, &core.FixApplicationError{Step: StepValidate, Err: fmt.Errorf("default branch of %s is unknown", repo.DisplayName())}
	}

	log := p.logger.With("repo", repo.DisplayName(), "branch", proposal.BranchName)
	fail := func(step string, err error) (*core.PublishResult, error) {
		log.Error("fix application failed", "step", step, "error", err)
		return nil, &core.FixApplicationError{Step: step, Err: err}
	}

	base, err := gh.GetBranchHead(ctx, repo.Owner, repo.Name, repo.DefaultBranch)
	if err != nil {
		return fail(StepResolveBase, err)
	}

	if err := gh.CreateBranch(ctx, repo.Owner, repo.Name, proposal.BranchName, base.CommitSHA); err != nil {
		return fail(StepCreateBranch, err)
	}

	entries := make([]core.TreeEntry, 0, len(proposal.Changes))
	for _, change := range proposal.Changes {
		sha, err := gh.CreateBlob(ctx, repo.Owner, repo.Name, change.NewContent)
		if err != nil {
			return fail(StepCreateBlobs, fmt.Errorf("blob for %s: %w", change.FilePath, err))
		}
		entries = append(entries, core.TreeEntry{Path: change.FilePath, Type: core.EntryTypeBlob, SHA: sha})
	}

	treeSHA, err := gh.CreateTree(ctx, repo.Owner, repo.Name, base.TreeSHA, entries)
	if err != nil {
		return fail(StepCreateTree, err)
	}

	commitSHA, err := gh.CreateCommit(ctx, repo.Owner, repo.Name, proposal.CommitMessage, treeSHA, base.CommitSHA)
	if err != nil {
		return fail(StepCreateCommit, err)
	}

	if err := gh.UpdateRef(ctx, repo.Owner, repo.Name, proposal.BranchName, commitSHA); err != nil {
		return fail(StepUpdateRef, err)
	}

	pr, err := gh.CreatePullRequest(ctx, repo.Owner, repo.Name, github.NewPullRequest{
		Title: proposal.PRTitle,
		Body:  proposal.PRBody,
		Head:  proposal.BranchName,
		Base:  repo.DefaultBranch,
	})
	if err != nil {
		return fail(StepCreatePR, err)
	}

	log.Info("fix published", "pr", pr.HTMLURL, "commit", commitSHA, "files", len(entries))
	return &core.PublishResult{
		Success:    true,
		PRURL:      pr.HTMLURL,
		BranchName: proposal.BranchName,
		CommitSHA:  commitSHA,
	}, nil
}
