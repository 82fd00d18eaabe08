package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sevigo/repo-pilot/internal/wire"
)

func main() {
	if err := run(); err != nil {
		slog.Error("repo-pilot server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := wire.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer cleanup()

	app.Logger.Info("starting repo-pilot",
		"port", app.Cfg.Server.Port,
		"postgres", app.Cfg.Database.Enabled(),
		"github_app", app.Cfg.GitHub.AppConfigured(),
		"workers", app.Cfg.MaxWorkers,
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Start()
	}()

	select {
	case <-ctx.Done():
		app.Logger.Info("received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			app.Logger.Error("server error", "error", err)
		}
	}

	if err := app.Stop(); err != nil {
		return fmt.Errorf("failed to stop application: %w", err)
	}
	return nil
}
