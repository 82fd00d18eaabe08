// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sevigo/repo-pilot/internal/app"
	"github.com/sevigo/repo-pilot/internal/config"
	"github.com/sevigo/repo-pilot/internal/fixer"
	"github.com/sevigo/repo-pilot/internal/github"
	"github.com/sevigo/repo-pilot/internal/jobs"
	"github.com/sevigo/repo-pilot/internal/llm"
	"github.com/sevigo/repo-pilot/internal/pipeline"
	"github.com/sevigo/repo-pilot/internal/server"
	"github.com/sevigo/repo-pilot/internal/session"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	slogLogger := provideLogger(cfg)

	services, factory, cleanup, err := initializeServices(cfg, slogLogger)
	if err != nil {
		return nil, nil, err
	}

	triageJob := jobs.NewTriageJob(cfg, factory, services.Pipeline, slogLogger)
	dispatcher := provideDispatcher(cfg, triageJob, slogLogger)
	httpServer := server.NewServer(ctx, cfg, dispatcher, services.Pipeline, services.Sessions, services.Store, slogLogger)

	return app.NewApp(services, httpServer, dispatcher), cleanup, nil
}

// InitializeServices wires the pipelines for the command-line tools.
func InitializeServices(logWriter io.Writer) (*app.Services, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	slogLogger := provideWriterLogger(cfg, logWriter)

	services, _, cleanup, err := initializeServices(cfg, slogLogger)
	if err != nil {
		return nil, nil, err
	}
	return services, cleanup, nil
}

func initializeServices(cfg *config.Config, slogLogger *slog.Logger) (*app.Services, *github.Factory, func(), error) {
	// Storage
	store, storeCleanup, err := provideStore(cfg, slogLogger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up storage: %w", err)
	}

	// Profile secrets
	cipher, err := provideCipher(cfg, slogLogger)
	if err != nil {
		storeCleanup()
		return nil, nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	resolver := session.NewResolver(cfg, store, cipher, slogLogger)

	// Prompt Manager
	promptMgr, err := llm.NewPromptManager()
	if err != nil {
		storeCleanup()
		return nil, nil, nil, fmt.Errorf("failed to create prompt manager: %w", err)
	}

	// Engine
	generator := llm.NewGeminiGenerator(slogLogger)
	engine := llm.NewEngine(promptMgr, generator, provideAIConfig(cfg), slogLogger)

	// GitHub
	factory := github.NewFactory(cfg, slogLogger)

	// Pipelines
	publisher := fixer.NewPublisher(slogLogger)
	service := pipeline.NewService(factory, engine, publisher, store, slogLogger)

	services := app.NewServices(cfg, service, resolver, store, slogLogger)
	return services, factory, storeCleanup, nil
}
