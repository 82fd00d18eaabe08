// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/repo-pilot/internal/core"
)

// DiffUnavailable replaces the diff when it cannot be downloaded.
const DiffUnavailable = "Failed to load diff content."

const (
	issuesPerPage       = 20
	pullsPerPage        = 20
	workflowRunsPerPage = 10
	maxLogRedirects     = 4
)

// Client defines the repository operations used by the pipelines and the fix publisher.
// Every method returns a *core.RemoteHostError for unexpected HTTP statuses.
//
//go:generate mockgen -destination=../../mocks/mock_github_client.go -package=mocks . Client
type Client interface {
	GetRepository(ctx context.Context, owner, repo string) (*core.Repository, error)
	ListIssues(ctx context.Context, owner, repo string) ([]*core.Issue, error)
	GetIssue(ctx context.Context, owner, repo string, number int) (*core.Issue, error)
	ListIssueComments(ctx context.Context, owner, repo string, number int) ([]*core.Comment, error)
	ListPullRequests(ctx context.Context, owner, repo string) ([]*core.PullRequest, error)
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*core.PullRequest, error)
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) string
	GetFileContent(ctx context.Context, owner, repo, path, ref string) (core.FileContent, error)
	GetReadme(ctx context.Context, owner, repo string) (string, error)
	GetRepoStructure(ctx context.Context, owner, repo, ref string) ([]core.TreeEntry, error)
	ListWorkflowRuns(ctx context.Context, owner, repo string) ([]*core.WorkflowRun, error)
	ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64) ([]*core.WorkflowJob, error)
	GetJobLogs(ctx context.Context, owner, repo string, jobID int64) (string, error)
	AddLabel(ctx context.Context, owner, repo string, number int, label string) error
	RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error
	GitWriter
}

// GitWriter is the Git Data API subset needed to publish a commit as a pull request.
type GitWriter interface {
	GetBranchHead(ctx context.Context, owner, repo, branch string) (*BranchHead, error)
	CreateBranch(ctx context.Context, owner, repo, branch, sha string) error
	CreateBlob(ctx context.Context, owner, repo, content string) (string, error)
	CreateTree(ctx context.Context, owner, repo, baseTree string, entries []core.TreeEntry) (string, error)
	CreateCommit(ctx context.Context, owner, repo, message, treeSHA, parentSHA string) (string, error)
	UpdateRef(ctx context.Context, owner, repo, branch, sha string) error
	CreatePullRequest(ctx context.Context, owner, repo string, pr NewPullRequest) (*core.PullRequest, error)
}

// BranchHead is the tip commit of a branch and the tree it points at.
type BranchHead struct {
	CommitSHA string
	TreeSHA   string
}

// NewPullRequest holds the fields needed to open a pull request.
type NewPullRequest struct {
	Title string
	Body  string
	Head  string
	Base  string
}

type gitHubClient struct {
	client *github.Client
	// logs are served from pre-signed storage URLs and need no GitHub credentials
	rawClient *http.Client
	logger    *slog.Logger
}

// NewGitHubClient wraps the official go-github client to provide a focused,
// testable interface for application-specific GitHub operations.
func NewGitHubClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{
		client:    client,
		rawClient: &http.Client{Timeout: 60 * time.Second},
		logger:    logger,
	}
}

// GetRepository retrieves repository metadata including the default branch.
func (g *gitHubClient) GetRepository(ctx context.Context, owner, repo string) (*core.Repository, error) {
	r, resp, err := g.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		g.logger.Error("failed to get repository", "owner", owner, "repo", repo, "error", err)
		return nil, remoteError("get repository", resp, err)
	}
	return toRepository(owner, repo, r), nil
}

// ListIssues returns the first page of open issues. The issues endpoint also returns
// pull requests, which are dropped here.
func (g *gitHubClient) ListIssues(ctx context.Context, owner, repo string) ([]*core.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: issuesPerPage},
	}
	items, resp, err := g.client.Issues.ListByRepo(ctx, owner, repo, opts)
	if err != nil {
		g.logger.Error("failed to list issues", "owner", owner, "repo", repo, "error", err)
		return nil, remoteError("list issues", resp, err)
	}
	return filterIssues(items), nil
}

func filterIssues(items []*github.Issue) []*core.Issue {
	issues := make([]*core.Issue, 0, len(items))
	for _, item := range items {
		if item.IsPullRequest() {
			continue
		}
		issues = append(issues, toIssue(item))
	}
	return issues
}

// GetIssue retrieves a single issue. Pull requests are rejected.
func (g *gitHubClient) GetIssue(ctx context.Context, owner, repo string, number int) (*core.Issue, error) {
	item, resp, err := g.client.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		g.logger.Error("failed to get issue", "owner", owner, "repo", repo, "issue", number, "error", err)
		return nil, remoteError("get issue", resp, err)
	}
	if item.IsPullRequest() {
		return nil, fmt.Errorf("#%d in %s/%s is a pull request, not an issue", number, owner, repo)
	}
	return toIssue(item), nil
}

// ListIssueComments returns all comments on an issue in creation order.
func (g *gitHubClient) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]*core.Comment, error) {
	var all []*core.Comment
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}

	for {
		comments, resp, err := g.client.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list issue comments", "owner", owner, "repo", repo, "issue", number, "error", err)
			return nil, remoteError("list issue comments", resp, err)
		}
		for _, c := range comments {
			all = append(all, toComment(c))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// ListPullRequests returns the first page of open pull requests.
func (g *gitHubClient) ListPullRequests(ctx context.Context, owner, repo string) ([]*core.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: pullsPerPage},
	}
	prs, resp, err := g.client.PullRequests.List(ctx, owner, repo, opts)
	if err != nil {
		g.logger.Error("failed to list pull requests", "owner", owner, "repo", repo, "error", err)
		return nil, remoteError("list pull requests", resp, err)
	}
	out := make([]*core.PullRequest, 0, len(prs))
	for _, pr := range prs {
		out = append(out, toPullRequest(pr))
	}
	return out, nil
}

// GetPullRequest retrieves a single pull request by its number.
func (g *gitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*core.PullRequest, error) {
	pr, resp, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		g.logger.Error("failed to get pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
		return nil, remoteError("get pull request", resp, err)
	}
	return toPullRequest(pr), nil
}

// GetPullRequestDiff retrieves the raw diff of a pull request. The diff is only
// supplementary context, so failures degrade to DiffUnavailable.
func (g *gitHubClient) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) string {
	diff, _, err := g.client.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{
		Type: github.Diff,
	})
	if err != nil {
		g.logger.Warn("failed to get pull request diff", "owner", owner, "repo", repo, "pr", number, "error", err)
		return DiffUnavailable
	}
	return diff
}

// GetFileContent returns the decoded content and blob sha of a file at ref.
// A missing file yields the zero FileContent and no error.
func (g *gitHubClient) GetFileContent(ctx context.Context, owner, repo, path, ref string) (core.FileContent, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}
	file, _, resp, err := g.client.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		if isNotFound(resp) {
			return core.FileContent{}, nil
		}
		g.logger.Error("failed to get file content", "owner", owner, "repo", repo, "path", path, "ref", ref, "error", err)
		return core.FileContent{}, remoteError("get file content", resp, err)
	}
	if file == nil {
		return core.FileContent{}, fmt.Errorf("path %q is a directory", path)
	}
	content, err := file.GetContent()
	if err != nil {
		return core.FileContent{}, fmt.Errorf("failed to decode content of %s: %w", path, err)
	}
	return core.FileContent{Content: content, SHA: file.GetSHA()}, nil
}

// GetReadme returns the decoded README of the default branch.
func (g *gitHubClient) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	readme, resp, err := g.client.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		g.logger.Warn("failed to get readme", "owner", owner, "repo", repo, "error", err)
		return "", remoteError("get readme", resp, err)
	}
	content, err := readme.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode readme: %w", err)
	}
	return content, nil
}

// GetRepoStructure lists every path reachable from ref.
func (g *gitHubClient) GetRepoStructure(ctx context.Context, owner, repo, ref string) ([]core.TreeEntry, error) {
	tree, resp, err := g.client.Git.GetTree(ctx, owner, repo, ref, true)
	if err != nil {
		g.logger.Error("failed to get repository tree", "owner", owner, "repo", repo, "ref", ref, "error", err)
		return nil, remoteError("get repository tree", resp, err)
	}
	if tree.GetTruncated() {
		g.logger.Warn("repository tree was truncated by the host", "owner", owner, "repo", repo, "entries", len(tree.Entries))
	}
	entries := make([]core.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, core.TreeEntry{
			Path: e.GetPath(),
			Type: e.GetType(),
			SHA:  e.GetSHA(),
		})
	}
	return entries, nil
}

// ListWorkflowRuns returns the most recent workflow runs.
func (g *gitHubClient) ListWorkflowRuns(ctx context.Context, owner, repo string) ([]*core.WorkflowRun, error) {
	opts := &github.ListWorkflowRunsOptions{ListOptions: github.ListOptions{PerPage: workflowRunsPerPage}}
	runs, resp, err := g.client.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
	if err != nil {
		g.logger.Error("failed to list workflow runs", "owner", owner, "repo", repo, "error", err)
		return nil, remoteError("list workflow runs", resp, err)
	}
	out := make([]*core.WorkflowRun, 0, len(runs.WorkflowRuns))
	for _, r := range runs.WorkflowRuns {
		out = append(out, toWorkflowRun(r))
	}
	return out, nil
}

// ListWorkflowJobs returns the jobs of the latest attempt of a run, in API order.
func (g *gitHubClient) ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64) ([]*core.WorkflowJob, error) {
	var all []*core.WorkflowJob
	opts := &github.ListWorkflowJobsOptions{ListOptions: github.ListOptions{PerPage: 100}}

	for {
		jobs, resp, err := g.client.Actions.ListWorkflowJobs(ctx, owner, repo, runID, opts)
		if err != nil {
			g.logger.Error("failed to list workflow jobs", "owner", owner, "repo", repo, "run", runID, "error", err)
			return nil, remoteError("list workflow jobs", resp, err)
		}
		for _, j := range jobs.Jobs {
			all = append(all, &core.WorkflowJob{
				ID:         j.GetID(),
				RunID:      j.GetRunID(),
				Name:       j.GetName(),
				Status:     j.GetStatus(),
				Conclusion: j.GetConclusion(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// GetJobLogs downloads the plain-text log of a job.
func (g *gitHubClient) GetJobLogs(ctx context.Context, owner, repo string, jobID int64) (string, error) {
	logURL, resp, err := g.client.Actions.GetWorkflowJobLogs(ctx, owner, repo, jobID, maxLogRedirects)
	if err != nil {
		g.logger.Error("failed to resolve job logs url", "owner", owner, "repo", repo, "job", jobID, "error", err)
		return "", remoteError("get job logs", resp, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build log request: %w", err)
	}
	res, err := g.rawClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download job logs: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read job logs: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &core.RemoteHostError{Op: "download job logs", Status: res.StatusCode, Body: string(body)}
	}
	return string(body), nil
}

// AddLabel adds a single label to an issue.
func (g *gitHubClient) AddLabel(ctx context.Context, owner, repo string, number int, label string) error {
	_, resp, err := g.client.Issues.AddLabelsToIssue(ctx, owner, repo, number, []string{label})
	if err != nil {
		g.logger.Error("failed to add label", "owner", owner, "repo", repo, "issue", number, "label", label, "error", err)
		return remoteError("add label", resp, err)
	}
	return nil
}

// RemoveLabel removes a label. A label that is already gone counts as removed.
func (g *gitHubClient) RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error {
	resp, err := g.client.Issues.RemoveLabelForIssue(ctx, owner, repo, number, label)
	if err != nil {
		if isNotFound(resp) {
			g.logger.Debug("label already absent", "owner", owner, "repo", repo, "issue", number, "label", label)
			return nil
		}
		g.logger.Error("failed to remove label", "owner", owner, "repo", repo, "issue", number, "label", label, "error", err)
		return remoteError("remove label", resp, err)
	}
	return nil
}

// CreateComment creates a new comment on an issue or pull request.
func (g *gitHubClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &github.IssueComment{Body: &body}
	_, resp, err := g.client.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		g.logger.Error("failed to create comment", "owner", owner, "repo", repo, "issue", number, "error", err)
		return remoteError("create comment", resp, err)
	}
	return nil
}
