package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/repo-pilot/internal/config"
	"github.com/sevigo/repo-pilot/internal/core"
)

// IssueTriager triages one issue with the given credentials.
type IssueTriager interface {
	TriageIssue(ctx context.Context, sess core.Session, owner, repo string, number int) (*core.TriageResult, error)
}

// InstallationTokenSource mints GitHub App installation tokens.
type InstallationTokenSource interface {
	InstallationToken(ctx context.Context, installationID int64) (string, error)
}

// TriageJob triages an issue in response to a webhook.
type TriageJob struct {
	cfg     *config.Config
	tokens  InstallationTokenSource
	triager IssueTriager
	logger  *slog.Logger
}

// NewTriageJob creates a new TriageJob with config, token source, triager and logger.
func NewTriageJob(cfg *config.Config, tokens InstallationTokenSource, triager IssueTriager, logger *slog.Logger) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if triager == nil {
		panic("triager cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &TriageJob{cfg: cfg, tokens: tokens, triager: triager, logger: logger}
}

// Run executes the triage job for a given issue event.
func (j *TriageJob) Run(ctx context.Context, event *core.IssueEvent) error {
	if err := validateEvent(event); err != nil {
		j.logger.Error("Input validation failed", "error", err)
		return fmt.Errorf("input validation failed: %w", err)
	}

	j.logger.Info("Starting triage job", "repo", event.RepoFullName, "issue", event.IssueNumber, "sender", event.Sender)

	token, err := j.githubToken(ctx, event)
	if err != nil {
		j.logger.Error("Failed to obtain GitHub credentials", "error", err)
		return fmt.Errorf("failed to obtain GitHub credentials: %w", err)
	}
	sess := core.Session{GitHubToken: token, AIAPIKey: j.cfg.AI.APIKey}

	result, err := j.triager.TriageIssue(ctx, sess, event.RepoOwner, event.RepoName, event.IssueNumber)
	if err != nil {
		return fmt.Errorf("failed to triage issue #%d: %w", event.IssueNumber, err)
	}

	j.logger.Info("Triage job completed successfully", "repo", event.RepoFullName, "issue", event.IssueNumber, "needs_info", result.NeedsInfo)
	return nil
}

// githubToken prefers an installation token and falls back to the configured token.
func (j *TriageJob) githubToken(ctx context.Context, event *core.IssueEvent) (string, error) {
	if event.InstallationID > 0 && j.tokens != nil && j.cfg.GitHub.AppConfigured() {
		return j.tokens.InstallationToken(ctx, event.InstallationID)
	}
	if j.cfg.GitHub.Token == "" {
		return "", &core.ConfigurationError{Field: "GitHub token"}
	}
	return j.cfg.GitHub.Token, nil
}
