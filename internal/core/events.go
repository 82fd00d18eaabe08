package core

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
)

// TriageCommand is the comment that asks for an issue to be triaged again.
const TriageCommand = "/triage"

// IssueEvent is the internal view of a webhook that asks for an issue to be triaged.
type IssueEvent struct {
	RepoOwner      string
	RepoName       string
	RepoFullName   string
	IssueNumber    int
	Sender         string
	InstallationID int64
}

func validateRepo(repo *github.Repository) error {
	if repo == nil || repo.GetOwner() == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return fmt.Errorf("repository or owner information is missing from the event")
	}
	return nil
}

// EventFromIssues accepts "opened" issues events. Everything else is ignored with an error
// describing why.
func EventFromIssues(event *github.IssuesEvent) (*IssueEvent, error) {
	if event.GetAction() != "opened" {
		return nil, fmt.Errorf("issues action %q is not handled", event.GetAction())
	}
	if event.GetIssue().IsPullRequest() {
		return nil, fmt.Errorf("issue is a pull request")
	}
	repo := event.GetRepo()
	if err := validateRepo(repo); err != nil {
		return nil, err
	}
	number := event.GetIssue().GetNumber()
	if number <= 0 {
		return nil, fmt.Errorf("invalid issue number: %d", number)
	}
	return &IssueEvent{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		IssueNumber:    number,
		Sender:         event.GetSender().GetLogin(),
		InstallationID: event.GetInstallation().GetID(),
	}, nil
}

// EventFromIssueComment accepts "/triage" comments on plain issues.
func EventFromIssueComment(event *github.IssueCommentEvent) (*IssueEvent, error) {
	if event.GetAction() != "created" {
		return nil, fmt.Errorf("comment action %q is not handled", event.GetAction())
	}
	if event.GetIssue().IsPullRequest() {
		return nil, fmt.Errorf("comment is on a pull request")
	}
	if !strings.EqualFold(strings.TrimSpace(event.GetComment().GetBody()), TriageCommand) {
		return nil, fmt.Errorf("comment is not a triage command")
	}
	repo := event.GetRepo()
	if err := validateRepo(repo); err != nil {
		return nil, err
	}
	if event.GetComment().GetUser().GetLogin() == "" {
		return nil, fmt.Errorf("commenter information is missing from the event")
	}
	return &IssueEvent{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		IssueNumber:    event.GetIssue().GetNumber(),
		Sender:         event.GetComment().GetUser().GetLogin(),
		InstallationID: event.GetInstallation().GetID(),
	}, nil
}
