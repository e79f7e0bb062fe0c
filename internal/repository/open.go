package repository

import (
	"context"
	"fmt"

	"task-tracker/internal/config"
	"task-tracker/internal/database"
	"task-tracker/pkg/logger"
)

// Open builds the TaskStore selected by STORE_DRIVER and returns a closer for it.
func Open(ctx context.Context, cfg *config.Config) (TaskStore, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.DB(ctx)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateOrCreateSchema(ctx, db); err != nil {
			return nil, nil, err
		}
		return NewPostgresStore(db), db.Close, nil
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		logger.Info(ctx, "SQLite store opened", "path", cfg.SQLitePath)
		return NewGormStore(db), sqlDB.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
