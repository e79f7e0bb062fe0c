package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"task-tracker/internal/config"
	"task-tracker/pkg/logger"
)

var (
	pool    *sql.DB
	once    sync.Once
	initErr error
)

// ErrNoDatabaseURL is returned when the postgres driver is selected without DATABASE_URL.
var ErrNoDatabaseURL = errors.New("DATABASE_URL is not set")

// DB returns the global Postgres connection pool (initialized on first use).
func DB(ctx context.Context) (*sql.DB, error) {
	once.Do(func() {
		cfg := config.Get()
		pool, initErr = Open(ctx, cfg.DatabaseURL, cfg.DBPoolSize)
	})
	return pool, initErr
}

// Open opens and pings a Postgres pool.
func Open(ctx context.Context, url string, poolSize int) (*sql.DB, error) {
	if url == "" {
		return nil, ErrNoDatabaseURL
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(max(poolSize/2, 1))
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info(ctx, "Database pool initialized", "max_open", poolSize)
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          BIGSERIAL PRIMARY KEY,
	title       VARCHAR(255) NOT NULL,
	description VARCHAR(1000),
	completed   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tasks_incomplete_recent
	ON tasks (created_at DESC, id DESC) WHERE completed = FALSE;
`

// MigrateOrCreateSchema creates the tasks table and its window index if missing.
func MigrateOrCreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	logger.Info(ctx, "Schema ensured", "table", "tasks")
	return nil
}
