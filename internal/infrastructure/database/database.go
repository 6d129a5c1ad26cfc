// Package database opens the SQL backend selected by configuration.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/eslsoft/cliploop/internal/infrastructure/config"
)

// Open connects to the configured database and verifies the connection. The
// returned cleanup closes the pool.
func Open(cfg *config.Config) (*sql.DB, func(), error) {
	driver := cfg.Database.Driver
	db, err := sql.Open(driver, cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == "sqlite3" {
		// the mirror writer is the only writer, a single connection avoids
		// SQLITE_BUSY under concurrent reads
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	return db, func() { db.Close() }, nil
}
