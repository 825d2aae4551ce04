package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskPriority represents how urgent a task is
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task represents a todo item owned by a single authenticated user
type Task struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	UserID      string       `json:"user_id" db:"user_id"` // token subject of the owner
	Title       string       `json:"title" db:"title"`
	Description *string      `json:"description" db:"description"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	Completed   bool         `json:"completed" db:"completed"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// NewTask creates a new Task instance
func NewTask(userID, title string, description *string, priority TaskPriority) *Task {
	if priority == "" {
		priority = PriorityMedium
	}
	now := time.Now().UTC()
	return &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsOwnedBy returns true if subject owns the task
func (t *Task) IsOwnedBy(subject string) bool {
	return t.UserID == subject
}

// Touch bumps the update timestamp
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}
