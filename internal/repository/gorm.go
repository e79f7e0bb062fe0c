package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-tracker/internal/models"
)

// GormStore is the TaskStore backed by gorm, used with the SQLite driver.
type GormStore struct {
	db *gorm.DB
}

var _ TaskStore = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Insert(ctx context.Context, title string, description *string) (models.Task, error) {
	task := models.Task{Title: title, Description: description}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return models.Task{}, gormErr("insert task", err)
	}
	return task, nil
}

func (s *GormStore) FindByID(ctx context.Context, id int64) (models.Task, bool, error) {
	var task models.Task
	err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Task{}, false, nil
	}
	if err != nil {
		return models.Task{}, false, gormErr("find task", err)
	}
	return task, true, nil
}

func (s *GormStore) FindRecentIncomplete(ctx context.Context, limit int) ([]models.Task, error) {
	tasks := make([]models.Task, 0, limit)
	if err := s.db.WithContext(ctx).
		Where("completed = ?", false).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, gormErr("find recent tasks", err)
	}
	return tasks, nil
}

func (s *GormStore) FindAll(ctx context.Context) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Find(&tasks).Error; err != nil {
		return nil, gormErr("find all tasks", err)
	}
	return tasks, nil
}

func (s *GormStore) MarkCompleted(ctx context.Context, id int64) (models.Task, error) {
	var task models.Task
	result := s.db.WithContext(ctx).Model(&task).Clauses(clause.Returning{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]any{"completed": true, "updated_at": time.Now()})
	if err := result.Error; err != nil {
		return models.Task{}, gormErr("complete task", err)
	}
	if result.RowsAffected > 0 {
		return task, nil
	}
	// Nothing changed: tell a missing row from one that was already completed.
	_, found, err := s.FindByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if !found {
		return models.Task{}, ErrNotFound
	}
	return models.Task{}, ErrAlreadyCompleted
}

func (s *GormStore) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return gormErr("delete task", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return gormErr("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return gormErr("ping", err)
	}
	return nil
}

func gormErr(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, gorm.ErrInvalidDB):
		return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
