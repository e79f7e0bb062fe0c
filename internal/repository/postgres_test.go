package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"task-tracker/internal/database"
)

// dockerAvailable probes the Docker daemon; testcontainers panics without one.
func dockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration tests in short mode")
	}
	if !dockerAvailable() {
		t.Skip("Docker not available, skipping PostgreSQL integration tests")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("tasks"),
		postgres.WithUsername("tasks"),
		postgres.WithPassword("tasks"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(ctx, connStr, 10)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.MigrateOrCreateSchema(ctx, db))
	return db
}

func TestPostgresStore(t *testing.T) {
	db := startPostgres(t)
	runStoreContract(t, func(t *testing.T) TaskStore {
		_, err := db.Exec(`TRUNCATE tasks RESTART IDENTITY`)
		require.NoError(t, err)
		return NewPostgresStore(db)
	}, pinPostgresCreatedAt)
}

func pinPostgresCreatedAt(t *testing.T, s TaskStore, at time.Time, ids ...int64) {
	t.Helper()
	_, err := s.(*PostgresStore).db.Exec(`UPDATE tasks SET created_at = $1 WHERE id = ANY($2)`, at, pq.Array(ids))
	require.NoError(t, err)
}

func TestPostgresStoreNilDB(t *testing.T) {
	s := NewPostgresStore(nil)
	ctx := context.Background()

	_, err := s.Insert(ctx, "x", nil)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	_, _, err = s.FindByID(ctx, 1)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	_, err = s.FindRecentIncomplete(ctx, 5)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	_, err = s.MarkCompleted(ctx, 1)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, s.Delete(ctx, 1), ErrStorageUnavailable)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique violation", &pq.Error{Code: "23505"}, ErrDuplicate},
		{"connection failure", &pq.Error{Code: "08006"}, ErrStorageUnavailable},
		{"admin shutdown", &pq.Error{Code: "57P01"}, ErrStorageUnavailable},
		{"conn done", sql.ErrConnDone, ErrStorageUnavailable},
		{"wrapped conn done", fmt.Errorf("exec: %w", sql.ErrConnDone), ErrStorageUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classify("op", tc.err)
			assert.ErrorIs(t, got, tc.want)
			assert.ErrorIs(t, got, tc.err)
		})
	}

	t.Run("other errors stay generic", func(t *testing.T) {
		got := classify("op", errors.New("syntax error"))
		assert.NotErrorIs(t, got, ErrDuplicate)
		assert.NotErrorIs(t, got, ErrStorageUnavailable)
		assert.Contains(t, got.Error(), "op: syntax error")
	})
}
