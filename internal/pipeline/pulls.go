package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/github"
	"github.com/sevigo/repo-pilot/internal/llm"
)

// ListPullRequests returns the open pull requests of a repository.
func (s *Service) ListPullRequests(ctx context.Context, sess core.Session, owner, repo string) ([]*core.PullRequest, error) {
	gh, err := s.githubClient(ctx, sess)
	if err != nil {
		return nil, err
	}
	return gh.ListPullRequests(ctx, owner, repo)
}

// ReviewPullRequest reviews a pull request using its diff and the full content
// of every changed file at the head ref.
func (s *Service) ReviewPullRequest(ctx context.Context, sess core.Session, owner, repo string, number int) (*core.PRReview, error) {
	gh, err := s.aiClient(ctx, sess)
	if err != nil {
		return nil, err
	}

	pr, err := gh.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request #%d: %w", number, err)
	}
	diff := gh.GetPullRequestDiff(ctx, owner, repo, number)

	files, err := s.changedFiles(ctx, gh, owner, repo, pr.HeadRef, github.ChangedPaths(diff))
	if err != nil {
		return nil, err
	}

	repository, err := gh.GetRepository(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	rc := s.loadRepoConfig(ctx, gh, owner, repo, repository.DefaultBranch)

	model := sess.ModelOr(s.engine.DefaultModel(core.TaskPRReview))
	review, err := s.engine.ReviewPullRequest(ctx, pr, diff, files, *repository, sess.AIAPIKey, model,
		llm.WithInstructions(rc.CustomInstructions))
	if err != nil {
		return nil, err
	}

	if err := s.store.SavePRReview(ctx, owner, repo, number, review); err != nil {
		s.logger.Error("failed to save pull request review", "repo", repository.DisplayName(), "pr", number, "error", err)
	}
	return review, nil
}

// changedFiles fetches every path concurrently. A failed fetch is recorded in
// the file content instead of failing the review.
func (s *Service) changedFiles(ctx context.Context, gh github.Client, owner, repo, ref string, paths []string) ([]core.FileContext, error) {
	files := make([]core.FileContext, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			files[i] = core.FileContext{FilePath: path}
			fc, err := gh.GetFileContent(gctx, owner, repo, path, ref)
			if err != nil {
				s.logger.Warn("could not fetch changed file", "path", path, "ref", ref, "error", err)
				files[i].Content = "Error: Could not fetch content. " + err.Error()
				return nil
			}
			files[i].Content = fc.Content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch changed files: %w", err)
	}
	return files, nil
}
