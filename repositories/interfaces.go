package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/taskboard-api/models"
)

// ErrNotFound is wrapped by repositories when a row does not exist
var ErrNotFound = errors.New("record not found")

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// TaskFilter narrows a task listing
type TaskFilter struct {
	Completed *bool
	Limit     int
	Offset    int
}

// TaskRepository handles task data operations
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// GetByID retrieves a task by ID regardless of owner
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)

	// ListByUser retrieves the tasks owned by a subject, newest first
	ListByUser(ctx context.Context, userID string, filter TaskFilter) ([]*models.Task, error)

	// Update updates a task
	Update(ctx context.Context, task *models.Task) error

	// Delete deletes a task
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) TaskRepository
}

// Repositories holds all repository instances
type Repositories struct {
	Tasks TaskRepository
}
