package repository

import (
	"context"
	"errors"

	"task-tracker/internal/models"
)

var (
	// ErrNotFound is returned when no task matches the given id.
	ErrNotFound = errors.New("task not found")
	// ErrAlreadyCompleted is returned by MarkCompleted when the task is already completed; no write happens.
	ErrAlreadyCompleted = errors.New("task already completed")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate task")
	// ErrStorageUnavailable is returned when the database cannot be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// TaskStore persists tasks. It carries no business rules and no cache:
// every read reflects the latest committed state.
type TaskStore interface {
	Insert(ctx context.Context, title string, description *string) (models.Task, error)
	FindByID(ctx context.Context, id int64) (models.Task, bool, error)
	// FindRecentIncomplete returns at most limit incomplete tasks, newest first
	// (created_at DESC, id DESC).
	FindRecentIncomplete(ctx context.Context, limit int) ([]models.Task, error)
	// MarkCompleted flips completed to true in a single conditional update.
	// It returns ErrNotFound or ErrAlreadyCompleted when no row was changed.
	MarkCompleted(ctx context.Context, id int64) (models.Task, error)
	FindAll(ctx context.Context) ([]models.Task, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}
