package github

import (
	"github.com/google/go-github/v73/github"

	"github.com/sevigo/repo-pilot/internal/core"
)

func toRepository(owner, name string, r *github.Repository) *core.Repository {
	return &core.Repository{
		Owner:         owner,
		Name:          name,
		DefaultBranch: r.GetDefaultBranch(),
		FullName:      r.GetFullName(),
		HTMLURL:       r.GetHTMLURL(),
		Description:   r.GetDescription(),
		Language:      r.GetLanguage(),
	}
}

func toIssue(i *github.Issue) *core.Issue {
	labels := make([]core.Label, 0, len(i.Labels))
	for _, l := range i.Labels {
		labels = append(labels, core.Label{Name: l.GetName()})
	}
	return &core.Issue{
		Number:    i.GetNumber(),
		Title:     i.GetTitle(),
		Body:      i.GetBody(),
		State:     i.GetState(),
		User:      core.User{Login: i.GetUser().GetLogin()},
		Labels:    labels,
		HTMLURL:   i.GetHTMLURL(),
		CreatedAt: i.GetCreatedAt().Time,
	}
}

func toComment(c *github.IssueComment) *core.Comment {
	return &core.Comment{
		ID:        c.GetID(),
		Body:      c.GetBody(),
		User:      core.User{Login: c.GetUser().GetLogin()},
		CreatedAt: c.GetCreatedAt().Time,
	}
}

func toPullRequest(pr *github.PullRequest) *core.PullRequest {
	return &core.PullRequest{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		State:   pr.GetState(),
		User:    core.User{Login: pr.GetUser().GetLogin()},
		HeadRef: pr.GetHead().GetRef(),
		HeadSHA: pr.GetHead().GetSHA(),
		BaseRef: pr.GetBase().GetRef(),
		HTMLURL: pr.GetHTMLURL(),
		DiffURL: pr.GetDiffURL(),
	}
}

func toWorkflowRun(r *github.WorkflowRun) *core.WorkflowRun {
	return &core.WorkflowRun{
		ID:         r.GetID(),
		Name:       r.GetName(),
		HeadBranch: r.GetHeadBranch(),
		HeadSHA:    r.GetHeadSHA(),
		Status:     r.GetStatus(),
		Conclusion: r.GetConclusion(),
		HTMLURL:    r.GetHTMLURL(),
		CreatedAt:  r.GetCreatedAt().Time,
	}
}
