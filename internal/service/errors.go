package service

import "errors"

// Domain errors are caller-actionable and kept verbatim across the service boundary.
var (
	ErrNotFound         = errors.New("task not found")
	ErrAlreadyCompleted = errors.New("task is already completed")
	ErrDuplicateTask    = errors.New("duplicate task")
)

// Operation failures carry no storage detail; the cause is logged instead.
var (
	ErrFetchFailed    = errors.New("failed to fetch tasks")
	ErrCreateFailed   = errors.New("failed to create task")
	ErrCompleteFailed = errors.New("failed to complete task")
	ErrDeleteFailed   = errors.New("failed to delete task")
)
