package tasks

import "github.com/upb/taskboard-api/models"

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Title       string              `json:"title" validate:"required,min=1,max=200"`
	Description *string             `json:"description" validate:"omitnil,max=1000"`
	Priority    models.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	// UserID may be sent but must name the caller
	UserID *string `json:"user_id"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/{id}. Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string              `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string              `json:"description" validate:"omitnil,max=1000"`
	Priority    *models.TaskPriority `json:"priority" validate:"omitnil,oneof=low medium high"`
	Completed   *bool                `json:"completed"`
	UserID      *string              `json:"user_id"`
}

// ListTasksRequest carries the query parameters of GET /api/tasks
type ListTasksRequest struct {
	Completed *bool
	Limit     int
	Offset    int
}

// Listing bounds
const (
	DefaultLimit = 50
	MaxLimit     = 100
)
