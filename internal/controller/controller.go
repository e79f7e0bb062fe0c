package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"task-tracker/internal/kvstore"
	"task-tracker/internal/models"
	"task-tracker/internal/service"
)

// TaskService is what the HTTP layer needs from the service.
type TaskService interface {
	ListRecent(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id int64) (models.Task, error)
	Create(ctx context.Context, in service.CreateTaskInput) (models.Task, error)
	Complete(ctx context.Context, id int64) (models.Task, error)
	ListAll(ctx context.Context) ([]models.Task, error)
	Delete(ctx context.Context, id int64) error
	Ready(ctx context.Context) error
}

// StatsReader exposes the event counters.
type StatsReader interface {
	Snapshot(ctx context.Context) (kvstore.TaskStats, error)
}

// Check is a named readiness probe.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Controller holds the HTTP handlers.
type Controller struct {
	tasks  TaskService
	stats  StatsReader
	checks []Check
	// Counter reads are shared between concurrent callers. Task reads never are.
	statsFlight singleflight.Group
}

// New builds a Controller. stats may be nil when Redis is not configured.
func New(tasks TaskService, stats StatsReader, checks ...Check) *Controller {
	return &Controller{tasks: tasks, stats: stats, checks: checks}
}

// snapshotStats coalesces concurrent counter reads into one Redis call. The
// shared call is detached from any single request's cancellation.
func (ctl *Controller) snapshotStats(ctx context.Context) (kvstore.TaskStats, error) {
	v, err, _ := ctl.statsFlight.Do("stats", func() (any, error) {
		return ctl.stats.Snapshot(context.WithoutCancel(ctx))
	})
	if err != nil {
		return kvstore.TaskStats{}, err
	}
	return v.(kvstore.TaskStats), nil
}

// errorResponse maps a service error to a status and a caller-safe message.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Task not found"
	case errors.Is(err, service.ErrAlreadyCompleted):
		return http.StatusConflict, "Task is already completed"
	case errors.Is(err, service.ErrDuplicateTask):
		return http.StatusConflict, "Duplicate entry"
	case errors.Is(err, service.ErrFetchFailed):
		return http.StatusInternalServerError, "Failed to fetch tasks"
	case errors.Is(err, service.ErrCreateFailed):
		return http.StatusInternalServerError, "Failed to create task"
	case errors.Is(err, service.ErrCompleteFailed):
		return http.StatusInternalServerError, "Failed to complete task"
	case errors.Is(err, service.ErrDeleteFailed):
		return http.StatusInternalServerError, "Failed to delete task"
	}
	return http.StatusInternalServerError, "Internal server error"
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
