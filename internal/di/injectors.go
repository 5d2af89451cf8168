//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"sheet_display/internal/app"
	"sheet_display/internal/config"

	wire "github.com/google/wire"
)

func InitChecker(ctx context.Context, configPath string) (*app.Checker, func(), error) {

	wire.Build(
		config.Load,
		app.NewRegistry,
		app.NewMetrics,
		app.InitializeClients,
		app.OpenStore,
		app.NewAlerts,
		app.NewMonitor,
		app.NewServer,
		app.NewProvisioner,
		app.NewChecker,
	)

	return nil, nil, nil
}
