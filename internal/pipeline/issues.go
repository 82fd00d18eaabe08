package pipeline

import (
	"context"
	"fmt"

	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/github"
	"github.com/sevigo/repo-pilot/internal/llm"
)

// ListIssues returns the open issues of a repository.
func (s *Service) ListIssues(ctx context.Context, sess core.Session, owner, repo string) ([]*core.Issue, error) {
	gh, err := s.githubClient(ctx, sess)
	if err != nil {
		return nil, err
	}
	return gh.ListIssues(ctx, owner, repo)
}

// AnalyzeIssue proposes an implementation plan for an issue using the
// repository structure as context. Feedback on an earlier proposal is passed
// to the model when non-empty.
func (s *Service) AnalyzeIssue(ctx context.Context, sess core.Session, owner, repo string, number int, feedback string) (*core.IssueAnalysis, error) {
	gh, err := s.aiClient(ctx, sess)
	if err != nil {
		return nil, err
	}

	issue, err := gh.GetIssue(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get issue #%d: %w", number, err)
	}
	repository, err := gh.GetRepository(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	rc := s.loadRepoConfig(ctx, gh, owner, repo, repository.DefaultBranch)
	structure, err := s.structure(ctx, gh, owner, repo, repository.DefaultBranch, rc)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository structure: %w", err)
	}

	model := sess.ModelOr(s.engine.DefaultModel(core.TaskIssueAnalysis))
	analysis, err := s.engine.AnalyzeIssue(ctx, issue, *repository, structure, sess.AIAPIKey, feedback, model,
		llm.WithInstructions(rc.CustomInstructions))
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveIssueAnalysis(ctx, owner, repo, number, analysis); err != nil {
		s.logger.Error("failed to save issue analysis", "repo", repository.DisplayName(), "issue", number, "error", err)
	}
	return analysis, nil
}

// TriageIssue triages a single issue and applies the outcome: a label plus a
// question for the author when information is missing, the completion label
// otherwise.
func (s *Service) TriageIssue(ctx context.Context, sess core.Session, owner, repo string, number int) (*core.TriageResult, error) {
	gh, err := s.aiClient(ctx, sess)
	if err != nil {
		return nil, err
	}
	issue, err := gh.GetIssue(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get issue #%d: %w", number, err)
	}
	rc := s.loadRepoConfig(ctx, gh, owner, repo, "")

	result, _, err := s.triageOne(ctx, gh, sess, rc, owner, repo, issue)
	return result, err
}

// RunTriagePass triages every open issue that carries neither triage label.
// Issues are handled one at a time; a failing issue is reported and the pass
// moves on.
func (s *Service) RunTriagePass(ctx context.Context, sess core.Session, owner, repo string) (*core.ScanReport, error) {
	gh, err := s.aiClient(ctx, sess)
	if err != nil {
		return nil, err
	}
	issues, err := gh.ListIssues(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	rc := s.loadRepoConfig(ctx, gh, owner, repo, "")

	report := &core.ScanReport{Results: []core.ScanItem{}}
	for _, issue := range issues {
		if issue.HasLabel(rc.Triage.NeedsInfoLabel) || issue.HasLabel(rc.Triage.CompleteLabel) {
			continue
		}
		s.logger.Info("triaging issue", "repo", owner+"/"+repo, "issue", issue.Number, "title", issue.Title)

		_, item, err := s.triageOne(ctx, gh, sess, rc, owner, repo, issue)
		if err != nil {
			s.logger.Error("triage failed", "repo", owner+"/"+repo, "issue", issue.Number, "error", err)
			item = core.ScanItem{Issue: issue.Number, Status: core.ScanStatusError, Reason: err.Error()}
		}
		report.Add(item)
	}
	s.logger.Info("triage pass finished", "repo", owner+"/"+repo, "processed", report.Processed)
	return report, nil
}

func (s *Service) triageOne(ctx context.Context, gh github.Client, sess core.Session, rc *core.RepoConfig, owner, repo string, issue *core.Issue) (*core.TriageResult, core.ScanItem, error) {
	model := sess.ModelOr(s.engine.DefaultModel(core.TaskTriage))
	result, err := s.engine.TriageIssue(ctx, issue, sess.AIAPIKey, model)
	if err != nil {
		return nil, core.ScanItem{}, err
	}

	if !result.NeedsInfo {
		if err := gh.AddLabel(ctx, owner, repo, issue.Number, rc.Triage.CompleteLabel); err != nil {
			return nil, core.ScanItem{}, fmt.Errorf("failed to label issue #%d: %w", issue.Number, err)
		}
		return result, core.ScanItem{Issue: issue.Number, Status: core.ScanStatusTriaged}, nil
	}

	s.logger.Info("issue needs more information", "issue", issue.Number, "question", result.Question)
	if err := gh.AddLabel(ctx, owner, repo, issue.Number, rc.Triage.NeedsInfoLabel); err != nil {
		return nil, core.ScanItem{}, fmt.Errorf("failed to label issue #%d: %w", issue.Number, err)
	}
	if err := gh.CreateComment(ctx, owner, repo, issue.Number, github.TriageQuestionComment(issue.User.Login, result.Question)); err != nil {
		return nil, core.ScanItem{}, fmt.Errorf("failed to comment on issue #%d: %w", issue.Number, err)
	}
	return result, core.ScanItem{Issue: issue.Number, Status: core.ScanStatusNeedsInfo, Reason: result.MissingInfoReason}, nil
}

// RunWeeklyScan revisits issues waiting for information. When the issue author
// wrote the most recent comment, the waiting label is removed and a single
// acknowledgement is posted. Issues without comments are not reported.
func (s *Service) RunWeeklyScan(ctx context.Context, sess core.Session, owner, repo string) (*core.ScanReport, error) {
	gh, err := s.githubClient(ctx, sess)
	if err != nil {
		return nil, err
	}
	issues, err := gh.ListIssues(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	rc := s.loadRepoConfig(ctx, gh, owner, repo, "")

	report := &core.ScanReport{Results: []core.ScanItem{}}
	for _, issue := range issues {
		if !issue.HasLabel(rc.Triage.NeedsInfoLabel) {
			continue
		}
		s.logger.Info("checking issue for updates", "repo", owner+"/"+repo, "issue", issue.Number)

		item, ok, err := s.checkForResponse(ctx, gh, rc, owner, repo, issue)
		if err != nil {
			s.logger.Error("weekly scan failed for issue", "repo", owner+"/"+repo, "issue", issue.Number, "error", err)
			report.Add(core.ScanItem{Issue: issue.Number, Status: core.ScanStatusError, Reason: err.Error()})
			continue
		}
		if ok {
			report.Add(item)
		}
	}
	s.logger.Info("weekly scan finished", "repo", owner+"/"+repo, "processed", report.Processed)
	return report, nil
}

func (s *Service) checkForResponse(ctx context.Context, gh github.Client, rc *core.RepoConfig, owner, repo string, issue *core.Issue) (core.ScanItem, bool, error) {
	comments, err := gh.ListIssueComments(ctx, owner, repo, issue.Number)
	if err != nil {
		return core.ScanItem{}, false, fmt.Errorf("failed to list comments: %w", err)
	}
	if len(comments) == 0 {
		return core.ScanItem{}, false, nil
	}

	last := comments[len(comments)-1]
	if last.User.Login != issue.User.Login {
		return core.ScanItem{Issue: issue.Number, Status: core.ScanStatusNoUserResponse}, true, nil
	}

	s.logger.Info("author responded, removing label", "issue", issue.Number, "label", rc.Triage.NeedsInfoLabel)
	if err := gh.RemoveLabel(ctx, owner, repo, issue.Number, rc.Triage.NeedsInfoLabel); err != nil {
		return core.ScanItem{}, false, fmt.Errorf("failed to remove label: %w", err)
	}
	if err := gh.CreateComment(ctx, owner, repo, issue.Number, github.AcknowledgementComment(rc.Triage.NeedsInfoLabel)); err != nil {
		return core.ScanItem{}, false, fmt.Errorf("failed to post acknowledgement: %w", err)
	}
	return core.ScanItem{Issue: issue.Number, Status: core.ScanStatusUpdated, Action: core.ScanActionRemovedLabel}, true, nil
}
