package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/middleware"
)

func ok(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{"success": true, "data": data, "message": message})
}

func fail(c *gin.Context, err error) {
	status, msg := errorResponse(err)
	c.JSON(status, gin.H{"success": false, "message": msg})
}

// GetTasks returns the recent incomplete window.
func (ctl *Controller) GetTasks(c *gin.Context) {
	tasks, err := ctl.tasks.ListRecent(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, tasks, "Tasks retrieved successfully")
}

// GetTask returns one task by id, completed or not.
func (ctl *Controller) GetTask(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid task ID"})
		return
	}
	task, err := ctl.tasks.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, task, "Task retrieved successfully")
}

// CreateTask expects middleware.ValidateTask to have run.
func (ctl *Controller) CreateTask(c *gin.Context) {
	in, found := middleware.TaskInput(c)
	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed"})
		return
	}
	task, err := ctl.tasks.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, task, "Task created successfully")
}

// CompleteTask marks the task named by :id as completed.
func (ctl *Controller) CompleteTask(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid task ID"})
		return
	}
	task, err := ctl.tasks.Complete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, task, "Task completed successfully")
}

// GetStats returns the created/completed counters folded from task events.
func (ctl *Controller) GetStats(c *gin.Context) {
	if ctl.stats == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Stats unavailable"})
		return
	}
	stats, err := ctl.snapshotStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Stats unavailable"})
		return
	}
	ok(c, http.StatusOK, stats, "Stats retrieved successfully")
}

// ListAllTasks is administrative: every task, completed ones included.
func (ctl *Controller) ListAllTasks(c *gin.Context) {
	tasks, err := ctl.tasks.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, tasks, "Tasks retrieved successfully")
}

// DeleteTask is administrative.
func (ctl *Controller) DeleteTask(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid task ID"})
		return
	}
	if err := ctl.tasks.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Health returns 200 if the process is alive. Used by load balancers.
func (ctl *Controller) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

// Ready returns 200 if the store and every configured dependency answer.
func (ctl *Controller) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := ctl.tasks.Ready(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
		return
	}
	for _, chk := range ctl.checks {
		if err := chk.Fn(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": chk.Name + " unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// NotFound is the JSON fallback for unknown routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
}
