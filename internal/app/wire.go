//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/cliploop/internal/adapter/httpapi"
	adapterrepo "github.com/eslsoft/cliploop/internal/adapter/repository"
	"github.com/eslsoft/cliploop/internal/infrastructure/config"
	"github.com/eslsoft/cliploop/internal/infrastructure/database"
	"github.com/eslsoft/cliploop/internal/infrastructure/server"
	"github.com/eslsoft/cliploop/internal/usecase"
	"github.com/eslsoft/cliploop/internal/usecase/backup"
)

var configSet = wire.NewSet(
	config.Load,
)

var storageSet = wire.NewSet(
	database.Open,
	NewStore,
	NewMediaRepository,
	adapterrepo.NewVideoRepository,
	adapterrepo.NewPlaylistRepository,
	adapterrepo.NewCollectionRepository,
	adapterrepo.NewProgressRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewSessionUsecase,
	usecase.NewLibraryUsecase,
	usecase.NewProgressUsecase,
	backup.NewService,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	server.NewServer,
	httpapi.NewHandler,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		storageSet,
		usecaseSet,
		serverSet,
		wire.Struct(new(Container), "Config", "Logger", "Server", "Store", "Backup"),
	)
	return nil, nil, nil
}
