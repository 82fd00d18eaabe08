package pipeline

import (
	"context"
	"fmt"

	"github.com/sevigo/repo-pilot/internal/core"
)

const noReadme = "No README found."

// GenerateDocumentation writes technical documentation for a repository from
// its README and stores it.
func (s *Service) GenerateDocumentation(ctx context.Context, sess core.Session, owner, repo string) (*core.Documentation, error) {
	gh, err := s.aiClient(ctx, sess)
	if err != nil {
		return nil, err
	}

	repository, err := gh.GetRepository(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	readme, err := gh.GetReadme(ctx, owner, repo)
	if err != nil || readme == "" {
		readme = noReadme
	}

	model := sess.ModelOr(s.engine.DefaultModel(core.TaskDocumentation))
	doc, err := s.engine.GenerateDocumentation(ctx, *repository, readme, sess.AIAPIKey, model)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveDocumentation(ctx, owner, repo, doc); err != nil {
		s.logger.Error("failed to save documentation", "repo", repository.DisplayName(), "error", err)
	}
	return doc, nil
}
