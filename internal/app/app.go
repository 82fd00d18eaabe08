// Package app holds the assembled components of Repo Pilot. The server binary
// runs the full App; the CLI and terminal only need the Services.
package app

import (
	"log/slog"

	"github.com/sevigo/repo-pilot/internal/config"
	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/pipeline"
	"github.com/sevigo/repo-pilot/internal/server"
	"github.com/sevigo/repo-pilot/internal/session"
	"github.com/sevigo/repo-pilot/internal/storage"
)

// Services are the components shared by every entry point.
type Services struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Pipeline *pipeline.Service
	Sessions *session.Resolver
	Store    storage.Store
}

// NewServices groups the shared components.
func NewServices(cfg *config.Config, p *pipeline.Service, sessions *session.Resolver, store storage.Store, logger *slog.Logger) *Services {
	return &Services{
		Cfg:      cfg,
		Logger:   logger,
		Pipeline: p,
		Sessions: sessions,
		Store:    store,
	}
}

// App is the HTTP service: webhook intake, cron endpoints and the REST API.
type App struct {
	*Services

	server     *server.Server
	dispatcher core.JobDispatcher
}

// NewApp sets up the application with all its dependencies.
func NewApp(services *Services, srv *server.Server, dispatcher core.JobDispatcher) *App {
	services.Logger.Info("Repo Pilot application initialized",
		"port", services.Cfg.Server.Port,
		"max_workers", services.Cfg.MaxWorkers,
		"database", services.Cfg.Database.Enabled(),
		"github_app", services.Cfg.GitHub.AppConfigured())

	return &App{
		Services:   services,
		server:     srv,
		dispatcher: dispatcher,
	}
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.Logger.Info("starting Repo Pilot",
		"server_port", a.Cfg.Server.Port,
		"max_workers", a.Cfg.MaxWorkers)

	err := a.server.Start()
	if err != nil {
		a.Logger.Error("failed to start HTTP server", "error", err)
		return err
	}

	return nil
}

// Stop shuts down the application cleanly. The database is closed by the
// cleanup function returned from the initializer.
func (a *App) Stop() error {
	a.Logger.Info("shutting down Repo Pilot services")

	// Stop the HTTP server first to prevent new incoming requests.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.Logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	// Stop the job dispatcher, allowing in-flight triage jobs to finish.
	a.dispatcher.Stop()

	if serverErr != nil {
		a.Logger.Error("Repo Pilot stopped with errors", "error", serverErr)
		return serverErr
	}

	a.Logger.Info("Repo Pilot stopped successfully")
	return nil
}
