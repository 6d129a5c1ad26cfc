package app

import (
	"context"
	"database/sql"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/cliploop/internal/adapter/media"
	adapterrepo "github.com/eslsoft/cliploop/internal/adapter/repository"
	"github.com/eslsoft/cliploop/internal/infrastructure/config"
	"github.com/eslsoft/cliploop/internal/repository"
)

// NewStore loads the persisted state into memory and starts the mirror
// writer.
func NewStore(cfg *config.Config, db *sql.DB, logger *logrus.Logger) (*adapterrepo.Store, func(), error) {
	return adapterrepo.Open(context.Background(), db, cfg.Database.Driver, logger)
}

// NewMediaRepository opens the blob directory from configuration.
func NewMediaRepository(cfg *config.Config) (repository.MediaRepository, error) {
	return media.NewFSRepository(cfg.Media.Dir)
}
