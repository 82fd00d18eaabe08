package github

import (
	"context"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/repo-pilot/internal/core"
)

const (
	blobEncoding  = "utf-8"
	regularMode   = "100644"
	branchRefRoot = "refs/heads/"
)

// GetBranchHead resolves the tip commit of a branch and the tree it references.
func (g *gitHubClient) GetBranchHead(ctx context.Context, owner, repo, branch string) (*BranchHead, error) {
	b, resp, err := g.client.Repositories.GetBranch(ctx, owner, repo, branch, 1)
	if err != nil {
		g.logger.Error("failed to get branch", "owner", owner, "repo", repo, "branch", branch, "error", err)
		return nil, remoteError("get branch", resp, err)
	}
	head := &BranchHead{
		CommitSHA: b.GetCommit().GetSHA(),
		TreeSHA:   b.GetCommit().GetCommit().GetTree().GetSHA(),
	}
	if head.TreeSHA == "" {
		// the Git Data API resolves a commit sha to its tree
		head.TreeSHA = head.CommitSHA
	}
	return head, nil
}

// CreateBranch creates refs/heads/<branch> pointing at sha.
func (g *gitHubClient) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	ref := &github.Reference{
		Ref:    github.Ptr(branchRefRoot + branch),
		Object: &github.GitObject{SHA: github.Ptr(sha)},
	}
	_, resp, err := g.client.Git.CreateRef(ctx, owner, repo, ref)
	if err != nil {
		g.logger.Error("failed to create branch", "owner", owner, "repo", repo, "branch", branch, "error", err)
		return remoteError("create branch", resp, err)
	}
	return nil
}

// CreateBlob stores content as a utf-8 blob and returns its sha.
func (g *gitHubClient) CreateBlob(ctx context.Context, owner, repo, content string) (string, error) {
	blob := &github.Blob{
		Content:  github.Ptr(content),
		Encoding: github.Ptr(blobEncoding),
	}
	created, resp, err := g.client.Git.CreateBlob(ctx, owner, repo, blob)
	if err != nil {
		g.logger.Error("failed to create blob", "owner", owner, "repo", repo, "error", err)
		return "", remoteError("create blob", resp, err)
	}
	return created.GetSHA(), nil
}

// CreateTree layers regular-file entries over baseTree and returns the new tree sha.
func (g *gitHubClient) CreateTree(ctx context.Context, owner, repo, baseTree string, entries []core.TreeEntry) (string, error) {
	ghEntries := make([]*github.TreeEntry, 0, len(entries))
	for _, e := range entries {
		ghEntries = append(ghEntries, &github.TreeEntry{
			Path: github.Ptr(e.Path),
			Mode: github.Ptr(regularMode),
			Type: github.Ptr(core.EntryTypeBlob),
			SHA:  github.Ptr(e.SHA),
		})
	}
	tree, resp, err := g.client.Git.CreateTree(ctx, owner, repo, baseTree, ghEntries)
	if err != nil {
		g.logger.Error("failed to create tree", "owner", owner, "repo", repo, "entries", len(entries), "error", err)
		return "", remoteError("create tree", resp, err)
	}
	return tree.GetSHA(), nil
}

// CreateCommit creates a commit with a single parent.
func (g *gitHubClient) CreateCommit(ctx context.Context, owner, repo, message, treeSHA, parentSHA string) (string, error) {
	commit := &github.Commit{
		Message: github.Ptr(message),
		Tree:    &github.Tree{SHA: github.Ptr(treeSHA)},
		Parents: []*github.Commit{{SHA: github.Ptr(parentSHA)}},
	}
	created, resp, err := g.client.Git.CreateCommit(ctx, owner, repo, commit, nil)
	if err != nil {
		g.logger.Error("failed to create commit", "owner", owner, "repo", repo, "error", err)
		return "", remoteError("create commit", resp, err)
	}
	return created.GetSHA(), nil
}

// UpdateRef moves heads/<branch> to sha.
func (g *gitHubClient) UpdateRef(ctx context.Context, owner, repo, branch, sha string) error {
	ref := &github.Reference{
		Ref:    github.Ptr("heads/" + branch),
		Object: &github.GitObject{SHA: github.Ptr(sha)},
	}
	_, resp, err := g.client.Git.UpdateRef(ctx, owner, repo, ref, true)
	if err != nil {
		g.logger.Error("failed to update ref", "owner", owner, "repo", repo, "branch", branch, "error", err)
		return remoteError("update ref", resp, err)
	}
	return nil
}

// CreatePullRequest opens a pull request from pr.Head into pr.Base.
func (g *gitHubClient) CreatePullRequest(ctx context.Context, owner, repo string, pr NewPullRequest) (*core.PullRequest, error) {
	created, resp, err := g.client.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: github.Ptr(pr.Title),
		Body:  github.Ptr(pr.Body),
		Head:  github.Ptr(pr.Head),
		Base:  github.Ptr(pr.Base),
	})
	if err != nil {
		g.logger.Error("failed to create pull request", "owner", owner, "repo", repo, "head", pr.Head, "error", err)
		return nil, remoteError("create pull request", resp, err)
	}
	return toPullRequest(created), nil
}
