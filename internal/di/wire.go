//go:build wireinject
// +build wireinject

package di

import (
	"UpgradeRisk/internal/handler/api"
	"UpgradeRisk/internal/usecase"
	"UpgradeRisk/pkg/config"
	"UpgradeRisk/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideKafkaProducer,
	ProvideLogger,
	ProvideMetrics,
	ProvidePostgresClient,
	ProvideClickHouseClient,
	ProvideRedisCache,
	ProvideCache,
)

var scoringSet = wire.NewSet(
	ProvideCatalogStore,
	ProvideSeriesStore,
	ProvideEventPublisher,
	ProvideHub,
	ProvideBroadcaster,
	ProvideScoringUseCase,
	ProvideUpgradeReportUseCase,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		infraSet,
		scoringSet,

		// Use cases
		ProvideCatalogUseCase,
		ProvideObservationHandler,

		// Transport
		ProvideKafkaConsumer,
		ProvideLimiter,
		ProvideHealthChecks,
		api.NewFunctionsHandler,
		api.NewScoringHandler,
		ProvideCatalogHandler,
		api.NewRouter,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil, nil
}

// InitializeSeeder wires the catalog seeder used by the seed command.
func InitializeSeeder(cfg *config.Config) (*usecase.Seeder, func(), error) {
	wire.Build(
		infraSet,
		scoringSet,
		ProvideSeeder,
	)
	return &usecase.Seeder{}, nil, nil
}
