package pipeline

import (
	"context"
	"fmt"

	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/llm"
)

// NoFailedJob is the analysis returned for a run without a failed job.
const NoFailedJob = "No failed job found for this run."

const conclusionFailure = "failure"

// ListWorkflowRuns returns the most recent workflow runs of a repository.
func (s *Service) ListWorkflowRuns(ctx context.Context, sess core.Session, owner, repo string) ([]*core.WorkflowRun, error) {
	gh, err := s.githubClient(ctx, sess)
	if err != nil {
		return nil, err
	}
	return gh.ListWorkflowRuns(ctx, owner, repo)
}

// AnalyzeWorkflowRun explains the first failed job of a workflow run from its
// logs. A run without a failed job is answered without calling the model.
func (s *Service) AnalyzeWorkflowRun(ctx context.Context, sess core.Session, owner, repo string, runID int64) (*core.CIAnalysis, error) {
	gh, err := s.aiClient(ctx, sess)
	if err != nil {
		return nil, err
	}

	jobs, err := gh.ListWorkflowJobs(ctx, owner, repo, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs of run %d: %w", runID, err)
	}
	var failed *core.WorkflowJob
	for _, j := range jobs {
		if j.Conclusion == conclusionFailure {
			failed = j
			break
		}
	}
	if failed == nil {
		s.logger.Info("no failed job in workflow run", "repo", owner+"/"+repo, "run_id", runID)
		return &core.CIAnalysis{Analysis: NoFailedJob}, nil
	}

	logs, err := gh.GetJobLogs(ctx, owner, repo, failed.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs of job %d: %w", failed.ID, err)
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

	model := sess.ModelOr(s.engine.DefaultModel(core.TaskCIAnalysis))
	analysis, err := s.engine.AnalyzeWorkflowFailure(ctx, logs, *repository, structure, sess.AIAPIKey, model,
		llm.WithInstructions(rc.CustomInstructions))
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveCIAnalysis(ctx, owner, repo, runID, analysis); err != nil {
		s.logger.Error("failed to save CI analysis", "repo", repository.DisplayName(), "run_id", runID, "error", err)
	}
	return analysis, nil
}
