package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
	"task-tracker/internal/models"
	"task-tracker/pkg/logger"
)

const taskColumns = `id, title, description, completed, created_at, updated_at`

// PostgresStore is the TaskStore backed by database/sql and lib/pq.
type PostgresStore struct {
	db *sql.DB
}

var _ TaskStore = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t    models.Task
		desc sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Title, &desc, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return models.Task{}, err
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	return t, nil
}

// Insert creates a new task; id and timestamps come from the database.
func (s *PostgresStore) Insert(ctx context.Context, title string, description *string) (models.Task, error) {
	if s.db == nil {
		return models.Task{}, ErrStorageUnavailable
	}
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO tasks (title, description) VALUES ($1, $2) RETURNING `+taskColumns,
		title, description)
	t, err := scanTask(row)
	if err != nil {
		logger.Error(ctx, "Repository Insert failed", "error", err)
		return models.Task{}, classify("insert task", err)
	}
	return t, nil
}

// FindByID returns found=false when no row matches.
func (s *PostgresStore) FindByID(ctx context.Context, id int64) (models.Task, bool, error) {
	if s.db == nil {
		return models.Task{}, false, ErrStorageUnavailable
	}
	t, err := scanTask(s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, false, nil
	}
	if err != nil {
		logger.Error(ctx, "Repository FindByID failed", "error", err, "id", id)
		return models.Task{}, false, classify("find task", err)
	}
	return t, true, nil
}

func (s *PostgresStore) FindRecentIncomplete(ctx context.Context, limit int) ([]models.Task, error) {
	return s.query(ctx, "find recent tasks",
		`SELECT `+taskColumns+` FROM tasks WHERE completed = FALSE
		 ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]models.Task, error) {
	return s.query(ctx, "find all tasks",
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id DESC`)
}

func (s *PostgresStore) query(ctx context.Context, op, q string, args ...any) ([]models.Task, error) {
	if s.db == nil {
		return nil, ErrStorageUnavailable
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		logger.Error(ctx, "Repository query failed", "op", op, "error", err)
		return nil, classify(op, err)
	}
	defer rows.Close()
	tasks := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error(ctx, "Repository scan task failed", "op", op, "error", err)
			return nil, classify(op, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return tasks, nil
}

// MarkCompleted only updates a row that is still incomplete, so concurrent
// callers cannot both succeed.
func (s *PostgresStore) MarkCompleted(ctx context.Context, id int64) (models.Task, error) {
	if s.db == nil {
		return models.Task{}, ErrStorageUnavailable
	}
	t, err := scanTask(s.db.QueryRowContext(ctx,
		`UPDATE tasks SET completed = TRUE, updated_at = NOW()
		 WHERE id = $1 AND completed = FALSE RETURNING `+taskColumns, id))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error(ctx, "Repository MarkCompleted failed", "error", err, "id", id)
		return models.Task{}, classify("complete task", err)
	}
	// No row changed: the task is missing or already completed. Completion never
	// reverts, so this read cannot contradict the update above.
	_, found, err := s.FindByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if !found {
		return models.Task{}, ErrNotFound
	}
	return models.Task{}, ErrAlreadyCompleted
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	if s.db == nil {
		return ErrStorageUnavailable
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error(ctx, "Repository Delete failed", "error", err, "id", id)
		return classify("delete task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("delete task", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrStorageUnavailable
	}
	if err := s.db.PingContext(ctx); err != nil {
		return classify("ping", err)
	}
	return nil
}

// classify wraps a driver error, tagging unique violations and lost connections.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "57", pqErr.Code.Class() == "53":
			return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
