package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"task-tracker/internal/models"
	"task-tracker/internal/repository"
	"task-tracker/pkg/logger"
)

// RecentWindow is how many incomplete tasks the list view shows.
const RecentWindow = 5

// CreateTaskInput is an already validated create request.
type CreateTaskInput struct {
	Title       string
	Description *string
}

// EventPublisher receives task lifecycle events after a successful mutation.
type EventPublisher interface {
	PublishTaskEvent(ctx context.Context, ev models.TaskEvent) error
}

// TaskService owns the task rules: input normalization, the completion
// transition and the translation of storage failures.
type TaskService struct {
	store  repository.TaskStore
	events EventPublisher
	now    func() time.Time
}

// NewTaskService wires the service to a store. events may be nil.
func NewTaskService(store repository.TaskStore, events EventPublisher) *TaskService {
	return &TaskService{store: store, events: events, now: time.Now}
}

// NormalizeTitle trims surrounding whitespace. It is idempotent.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// NormalizeDescription trims and maps blank input to nil. It is idempotent.
func NormalizeDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*desc)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ListRecent returns up to RecentWindow incomplete tasks, newest first.
func (s *TaskService) ListRecent(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.store.FindRecentIncomplete(ctx, RecentWindow)
	if err != nil {
		logger.Error(ctx, "Error fetching tasks", "error", err)
		return nil, ErrFetchFailed
	}
	return tasks, nil
}

// Create stores a new task. Title validation happens upstream.
func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (models.Task, error) {
	task, err := s.store.Insert(ctx, NormalizeTitle(in.Title), NormalizeDescription(in.Description))
	if err != nil {
		logger.Error(ctx, "Error creating task", "error", err)
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Task{}, ErrDuplicateTask
		}
		return models.Task{}, ErrCreateFailed
	}
	logger.Info(ctx, "Task created", "id", task.ID)
	s.publish(ctx, models.EventTaskCreated, task.ID)
	return task, nil
}

// Complete marks a task as done. It fails with ErrNotFound for unknown ids and
// ErrAlreadyCompleted when the task was completed before; neither case writes.
func (s *TaskService) Complete(ctx context.Context, id int64) (models.Task, error) {
	task, err := s.store.MarkCompleted(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return models.Task{}, ErrNotFound
	case errors.Is(err, repository.ErrAlreadyCompleted):
		return models.Task{}, ErrAlreadyCompleted
	default:
		logger.Error(ctx, "Error completing task", "error", err, "id", id)
		return models.Task{}, ErrCompleteFailed
	}
	logger.Info(ctx, "Task completed", "id", task.ID)
	s.publish(ctx, models.EventTaskCompleted, task.ID)
	return task, nil
}

// Get returns a single task by id.
func (s *TaskService) Get(ctx context.Context, id int64) (models.Task, error) {
	task, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		logger.Error(ctx, "Error fetching task", "error", err, "id", id)
		return models.Task{}, ErrFetchFailed
	}
	if !found {
		return models.Task{}, ErrNotFound
	}
	return task, nil
}

// ListAll returns every task, completed ones included. Administrative use only.
func (s *TaskService) ListAll(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.store.FindAll(ctx)
	if err != nil {
		logger.Error(ctx, "Error fetching all tasks", "error", err)
		return nil, ErrFetchFailed
	}
	return tasks, nil
}

// Delete removes a task. Administrative use only.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	switch {
	case err == nil:
		logger.Info(ctx, "Task deleted", "id", id)
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	default:
		logger.Error(ctx, "Error deleting task", "error", err, "id", id)
		return ErrDeleteFailed
	}
}

// Ready reports whether the underlying store answers.
func (s *TaskService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *TaskService) publish(ctx context.Context, eventType string, taskID int64) {
	if s.events == nil {
		return
	}
	ev := models.TaskEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		TaskID:     taskID,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.PublishTaskEvent(ctx, ev); err != nil {
		logger.Warn(ctx, "Task event publish failed", "error", err, "type", eventType, "id", taskID)
	}
}
