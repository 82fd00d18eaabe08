// Package pipeline composes the GitHub client, the AI engine, the fix publisher
// and the result store into the operations exposed by the server, the CLI and
// the terminal dashboard.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/sevigo/repo-pilot/internal/config"
	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/fixer"
	"github.com/sevigo/repo-pilot/internal/github"
	"github.com/sevigo/repo-pilot/internal/llm"
	"github.com/sevigo/repo-pilot/internal/storage"
)

// RepoConfigPath is the repository file holding per-repository settings.
const RepoConfigPath = ".repo-pilot.yml"

// Service runs the analysis pipelines. Every call receives an already resolved
// session and builds its own GitHub client from it.
type Service struct {
	clients   github.ClientFactory
	engine    *llm.Engine
	publisher *fixer.Publisher
	store     storage.Store
	logger    *slog.Logger
}

func NewService(clients github.ClientFactory, engine *llm.Engine, publisher *fixer.Publisher, store storage.Store, logger *slog.Logger) *Service {
	return &Service{
		clients:   clients,
		engine:    engine,
		publisher: publisher,
		store:     store,
		logger:    logger,
	}
}

// Store exposes the result store for read-only endpoints.
func (s *Service) Store() storage.Store {
	return s.store
}

func (s *Service) githubClient(ctx context.Context, sess core.Session) (github.Client, error) {
	if err := sess.RequireGitHub(); err != nil {
		return nil, err
	}
	return s.clients.ForToken(ctx, sess.GitHubToken), nil
}

func (s *Service) aiClient(ctx context.Context, sess core.Session) (github.Client, error) {
	if err := sess.RequireAI(); err != nil {
		return nil, err
	}
	return s.clients.ForToken(ctx, sess.GitHubToken), nil
}

// loadRepoConfig reads .repo-pilot.yml from ref. A missing or invalid file
// yields the defaults so that analysis can continue.
func (s *Service) loadRepoConfig(ctx context.Context, gh github.Client, owner, repo, ref string) *core.RepoConfig {
	file, err := gh.GetFileContent(ctx, owner, repo, RepoConfigPath, ref)
	if err != nil {
		s.logger.Warn("failed to fetch repository config, using defaults", "repo", owner+"/"+repo, "error", err)
		return core.DefaultRepoConfig()
	}
	if !file.Exists() {
		return core.DefaultRepoConfig()
	}
	cfg, err := config.ParseRepoConfig([]byte(file.Content))
	if err != nil {
		s.logger.Warn("invalid repository config, using defaults", "repo", owner+"/"+repo, "error", err)
		return core.DefaultRepoConfig()
	}
	return cfg
}

// structure renders the repository tree at ref without the excluded directories.
func (s *Service) structure(ctx context.Context, gh github.Client, owner, repo, ref string, rc *core.RepoConfig) (string, error) {
	entries, err := gh.GetRepoStructure(ctx, owner, repo, ref)
	if err != nil {
		return "", err
	}
	return github.FormatStructure(github.ExcludeDirs(entries, rc.ExcludeDirs)), nil
}
