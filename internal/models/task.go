package models

import "time"

// Task represents a tracked unit of work.
type Task struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description *string   `json:"description" gorm:"size:1000"`
	Completed   bool      `json:"completed" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// TableName pins the gorm table name to the one used by the SQL store.
func (Task) TableName() string {
	return "tasks"
}

// Task event types published after a successful mutation.
const (
	EventTaskCreated   = "task.created"
	EventTaskCompleted = "task.completed"
)

// TaskEvent is the message payload for Kafka.
type TaskEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	TaskID     int64     `json:"task_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
