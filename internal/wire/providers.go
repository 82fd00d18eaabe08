package wire

import (
	"io"
	"log/slog"

	"github.com/google/wire"

	"github.com/sevigo/repo-pilot/internal/app"
	"github.com/sevigo/repo-pilot/internal/config"
	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/db"
	"github.com/sevigo/repo-pilot/internal/fixer"
	"github.com/sevigo/repo-pilot/internal/github"
	"github.com/sevigo/repo-pilot/internal/jobs"
	"github.com/sevigo/repo-pilot/internal/llm"
	"github.com/sevigo/repo-pilot/internal/logger"
	"github.com/sevigo/repo-pilot/internal/pipeline"
	"github.com/sevigo/repo-pilot/internal/server"
	"github.com/sevigo/repo-pilot/internal/server/handler"
	"github.com/sevigo/repo-pilot/internal/session"
	"github.com/sevigo/repo-pilot/internal/storage"
)

// ServiceSet builds everything the analysis pipelines need. It expects a
// *config.Config and a *slog.Logger from the including set.
var ServiceSet = wire.NewSet(
	app.NewServices,
	pipeline.NewService,
	fixer.NewPublisher,
	llm.NewEngine,
	llm.NewPromptManager,
	llm.NewGeminiGenerator,
	github.NewFactory,
	session.NewResolver,
	provideStore,
	provideCipher,
	provideAIConfig,
	wire.Bind(new(github.ClientFactory), new(*github.Factory)),
)

// AppSet builds the HTTP service on top of ServiceSet.
var AppSet = wire.NewSet(
	ServiceSet,
	app.NewApp,
	server.NewServer,
	jobs.NewTriageJob,
	provideDispatcher,
	provideLogger,
	config.LoadConfig,
	wire.Bind(new(jobs.IssueTriager), new(*pipeline.Service)),
	wire.Bind(new(jobs.InstallationTokenSource), new(*github.Factory)),
	wire.Bind(new(handler.Pipeline), new(*pipeline.Service)),
	wire.Bind(new(handler.SessionResolver), new(*session.Resolver)),
)

// ToolSet builds the services for the CLI and the terminal, logging to the
// writer they pass in.
var ToolSet = wire.NewSet(
	ServiceSet,
	provideWriterLogger,
	config.LoadConfig,
)

func provideLogger(cfg *config.Config) *slog.Logger {
	return logger.NewLogger(cfg.Logging, nil)
}

func provideWriterLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logger.NewLogger(cfg.Logging, w)
}

func provideAIConfig(cfg *config.Config) config.AIConfig {
	return cfg.AI
}

// provideStore connects to Postgres when a database is configured and falls
// back to the in-memory store otherwise.
func provideStore(cfg *config.Config, logger *slog.Logger) (storage.Store, func(), error) {
	if !cfg.Database.Enabled() {
		logger.Warn("no database configured, analysis results are kept in memory")
		return storage.NewMemoryStore(), func() {}, nil
	}
	conn, cleanup, err := db.NewDatabase(&cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewStore(conn.DB), cleanup, nil
}

// provideCipher returns nil when no encryption key is configured; saving
// profile secrets is then refused.
func provideCipher(cfg *config.Config, logger *slog.Logger) (*session.Cipher, error) {
	if cfg.Security.EncryptionKey == "" {
		return nil, nil
	}
	return session.NewCipher([]byte(cfg.Security.EncryptionKey), logger)
}

func provideDispatcher(cfg *config.Config, job core.Job, logger *slog.Logger) core.JobDispatcher {
	return jobs.NewDispatcher(job, cfg.MaxWorkers, logger)
}
