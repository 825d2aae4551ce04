package tasks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/taskboard-api/models"
	"github.com/upb/taskboard-api/repositories"
	"github.com/upb/taskboard-api/services"
	"go.uber.org/zap"
)

// TaskService implements the task operations on behalf of an authenticated subject.
// Every operation is scoped to the subject; tasks of other users are never returned.
type TaskService struct {
	taskRepo  repositories.TaskRepository
	txManager repositories.TransactionManager
	logger    *zap.Logger
}

// NewTaskService creates a new TaskService instance
func NewTaskService(taskRepo repositories.TaskRepository, txManager repositories.TransactionManager, logger *zap.Logger) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// List returns the subject's tasks, newest first
func (s *TaskService) List(ctx context.Context, subject string, req ListTasksRequest) ([]*models.Task, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	tasks, err := s.taskRepo.ListByUser(ctx, subject, repositories.TaskFilter{
		Completed: req.Completed,
		Limit:     limit,
		Offset:    req.Offset,
	})
	if err != nil {
		return nil, services.WrapInternal("failed to list tasks", err)
	}
	return tasks, nil
}

// Create stores a new task owned by subject
func (s *TaskService) Create(ctx context.Context, subject string, req CreateTaskRequest) (*models.Task, error) {
	if req.UserID != nil && *req.UserID != subject {
		s.logger.Warn("task creation for another user rejected",
			zap.String("sub", subject),
			zap.String("requested_user_id", *req.UserID))
		return nil, services.OwnershipChange(subject, *req.UserID)
	}

	task := models.NewTask(subject, req.Title, req.Description, req.Priority)
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, services.WrapInternal("failed to create task", err)
	}

	s.logger.Info("task created",
		zap.String("task_id", task.ID.String()),
		zap.String("sub", subject))
	return task, nil
}

// Get returns one task owned by subject
func (s *TaskService) Get(ctx context.Context, subject string, id uuid.UUID) (*models.Task, error) {
	return s.loadOwned(ctx, s.taskRepo, subject, id)
}

// Update applies the present fields of req to the task. The owner can never change.
func (s *TaskService) Update(ctx context.Context, subject string, id uuid.UUID, req UpdateTaskRequest) (*models.Task, error) {
	var updated *models.Task
	err := s.txManager.InTransaction(ctx, func(ctx context.Context, tx repositories.Transaction) error {
		repo := s.taskRepo.WithTx(tx)

		task, err := s.loadOwned(ctx, repo, subject, id)
		if err != nil {
			return err
		}
		if req.UserID != nil && *req.UserID != task.UserID {
			s.logger.Warn("task ownership change rejected",
				zap.String("task_id", id.String()),
				zap.String("sub", subject),
				zap.String("requested_user_id", *req.UserID))
			return services.OwnershipChange(task.UserID, *req.UserID)
		}

		if req.Title != nil {
			task.Title = *req.Title
		}
		if req.Description != nil {
			task.Description = req.Description
		}
		if req.Priority != nil {
			task.Priority = *req.Priority
		}
		if req.Completed != nil {
			task.Completed = *req.Completed
		}
		task.Touch()

		if err := repo.Update(ctx, task); err != nil {
			return s.storageError("failed to update task", err)
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ToggleComplete flips the completion flag of a task
func (s *TaskService) ToggleComplete(ctx context.Context, subject string, id uuid.UUID) (*models.Task, error) {
	var toggled *models.Task
	err := s.txManager.InTransaction(ctx, func(ctx context.Context, tx repositories.Transaction) error {
		repo := s.taskRepo.WithTx(tx)

		task, err := s.loadOwned(ctx, repo, subject, id)
		if err != nil {
			return err
		}
		task.Completed = !task.Completed
		task.Touch()

		if err := repo.Update(ctx, task); err != nil {
			return s.storageError("failed to update task", err)
		}
		toggled = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toggled, nil
}

// Delete removes a task owned by subject
func (s *TaskService) Delete(ctx context.Context, subject string, id uuid.UUID) error {
	return s.txManager.InTransaction(ctx, func(ctx context.Context, tx repositories.Transaction) error {
		repo := s.taskRepo.WithTx(tx)

		if _, err := s.loadOwned(ctx, repo, subject, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return s.storageError("failed to delete task", err)
		}

		s.logger.Info("task deleted",
			zap.String("task_id", id.String()),
			zap.String("sub", subject))
		return nil
	})
}

// loadOwned fetches a task and checks that subject owns it
func (s *TaskService) loadOwned(ctx context.Context, repo repositories.TaskRepository, subject string, id uuid.UUID) (*models.Task, error) {
	task, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storageError("failed to get task", err)
	}
	if !task.IsOwnedBy(subject) {
		s.logger.Warn("access to another user's task rejected",
			zap.String("task_id", id.String()),
			zap.String("sub", subject))
		return nil, services.Forbidden(errors.New("task belongs to another user"))
	}
	return task, nil
}

func (s *TaskService) storageError(message string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return services.TaskNotFound(err)
	}
	return services.WrapInternal(message, err)
}
