package app

import (
	"github.com/sirupsen/logrus"

	adapterrepo "github.com/eslsoft/cliploop/internal/adapter/repository"
	"github.com/eslsoft/cliploop/internal/infrastructure/config"
	"github.com/eslsoft/cliploop/internal/infrastructure/server"
	"github.com/eslsoft/cliploop/internal/usecase/backup"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Server *server.Server
	Store  *adapterrepo.Store
	Backup *backup.Service
}
