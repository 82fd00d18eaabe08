//go:build wireinject
// +build wireinject

package wire

import (
	"context"
	"io"

	"github.com/google/wire"

	"github.com/sevigo/repo-pilot/internal/app"
)

func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(AppSet)
	return &app.App{}, nil, nil
}

func InitializeServices(logWriter io.Writer) (*app.Services, func(), error) {
	wire.Build(ToolSet)
	return &app.Services{}, nil, nil
}
