// Package database opens the SQLite handles used by the service modules.
package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options tunes how a SQLite database is opened.
type Options struct {
	// Debug enables GORM SQL logging.
	Debug bool
}

// OpenSQLite opens (or creates) the SQLite database at path and migrates the
// given models. Constraint violations are translated to GORM's error values,
// so a unique-index conflict surfaces as gorm.ErrDuplicatedKey.
//
// SQLite allows one writer at a time; the pool is capped at a single
// connection so concurrent writers queue in Go instead of failing with
// "database is locked". This also keeps ":memory:" databases on one connection.
func OpenSQLite(path string, opts Options, models ...any) (*gorm.DB, error) {
	logLevel := logger.Silent
	if opts.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return db, nil
}
