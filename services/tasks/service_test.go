package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/taskboard-api/models"
	"github.com/upb/taskboard-api/repositories"
	"github.com/upb/taskboard-api/services"
	"go.uber.org/zap"
)

// MockTaskRepository is a mock implementation of TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, id)
	if task := args.Get(0); task != nil {
		return task.(*models.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskRepository) ListByUser(ctx context.Context, userID string, filter repositories.TaskFilter) ([]*models.Task, error) {
	args := m.Called(ctx, userID, filter)
	if tasks := args.Get(0); tasks != nil {
		return tasks.([]*models.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) WithTx(tx repositories.Transaction) repositories.TaskRepository {
	return m
}

// inlineTxManager runs the callback without a database
type inlineTxManager struct{}

func (inlineTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return inlineTx{ctx: ctx}, nil
}

func (m inlineTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return fn(ctx, inlineTx{ctx: ctx})
}

type inlineTx struct{ ctx context.Context }

func (inlineTx) Commit() error              { return nil }
func (inlineTx) Rollback() error            { return nil }
func (t inlineTx) Context() context.Context { return t.ctx }

func newService(repo *MockTaskRepository) *TaskService {
	return NewTaskService(repo, inlineTxManager{}, zap.NewNop())
}

func strPtr(s string) *string { return &s }

func TestTaskService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("applies default limit", func(t *testing.T) {
		repo := new(MockTaskRepository)
		svc := newService(repo)
		owned := []*models.Task{models.NewTask("user-1", "a", nil, "")}

		repo.On("ListByUser", ctx, "user-1", repositories.TaskFilter{Limit: DefaultLimit}).Return(owned, nil)

		tasks, err := svc.List(ctx, "user-1", ListTasksRequest{})
		require.NoError(t, err)
		assert.Equal(t, owned, tasks)
		repo.AssertExpectations(t)
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		repo := new(MockTaskRepository)
		svc := newService(repo)
		done := true

		repo.On("ListByUser", ctx, "user-1", repositories.TaskFilter{Completed: &done, Limit: 5, Offset: 10}).
			Return(nil, errors.New("connection refused"))

		_, err := svc.List(ctx, "user-1", ListTasksRequest{Completed: &done, Limit: 5, Offset: 10})
		assert.True(t, services.IsInternalError(err))
	})
}

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		req       CreateTaskRequest
		repoErr   error
		wantCode  services.ErrorCode
		wantSaved bool
	}{
		{
			name:      "owner taken from subject",
			req:       CreateTaskRequest{Title: "Ship release"},
			wantSaved: true,
		},
		{
			name:      "matching user_id accepted",
			req:       CreateTaskRequest{Title: "Ship release", UserID: strPtr("user-1")},
			wantSaved: true,
		},
		{
			name:     "other user_id rejected",
			req:      CreateTaskRequest{Title: "Ship release", UserID: strPtr("user-2")},
			wantCode: services.CodeOwnershipChangeForbidden,
		},
		{
			name:      "storage failure",
			req:       CreateTaskRequest{Title: "Ship release"},
			repoErr:   errors.New("disk full"),
			wantCode:  services.CodeInternalError,
			wantSaved: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTaskRepository)
			svc := newService(repo)

			if tt.wantSaved {
				repo.On("Create", ctx, mock.MatchedBy(func(task *models.Task) bool {
					return task.UserID == "user-1" && task.Title == "Ship release" && task.Priority == models.PriorityMedium
				})).Return(tt.repoErr)
			}

			task, err := svc.Create(ctx, "user-1", tt.req)
			if tt.wantCode != "" {
				var domainErr *services.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.wantCode, domainErr.Code)
				assert.Nil(t, task)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "user-1", task.UserID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestTaskService_Get(t *testing.T) {
	ctx := context.Background()
	task := models.NewTask("user-1", "Mine", nil, models.PriorityLow)

	tests := []struct {
		name     string
		subject  string
		found    *models.Task
		repoErr  error
		wantCode services.ErrorCode
	}{
		{name: "owner", subject: "user-1", found: task},
		{name: "other user", subject: "user-2", found: task, wantCode: services.CodeForbidden},
		{name: "missing", subject: "user-1", repoErr: repositories.ErrNotFound, wantCode: services.CodeTaskNotFound},
		{name: "storage failure", subject: "user-1", repoErr: errors.New("timeout"), wantCode: services.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTaskRepository)
			svc := newService(repo)
			if tt.found != nil {
				repo.On("GetByID", ctx, task.ID).Return(tt.found, nil)
			} else {
				repo.On("GetByID", ctx, task.ID).Return(nil, tt.repoErr)
			}

			got, err := svc.Get(ctx, tt.subject, task.ID)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, task, got)
				return
			}
			var domainErr *services.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("applies present fields only", func(t *testing.T) {
		repo := new(MockTaskRepository)
		svc := newService(repo)
		desc := "keep me"
		task := models.NewTask("user-1", "Old", &desc, models.PriorityLow)
		high := models.PriorityHigh
		done := true

		repo.On("GetByID", ctx, task.ID).Return(task, nil)
		repo.On("Update", ctx, task).Return(nil)

		got, err := svc.Update(ctx, "user-1", task.ID, UpdateTaskRequest{
			Title:     strPtr("New"),
			Priority:  &high,
			Completed: &done,
			UserID:    strPtr("user-1"),
		})
		require.NoError(t, err)
		assert.Equal(t, "New", got.Title)
		assert.Equal(t, "keep me", *got.Description)
		assert.Equal(t, models.PriorityHigh, got.Priority)
		assert.True(t, got.Completed)
		assert.Equal(t, "user-1", got.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("ownership change rejected", func(t *testing.T) {
		repo := new(MockTaskRepository)
		svc := newService(repo)
		task := models.NewTask("user-1", "Old", nil, "")

		repo.On("GetByID", ctx, task.ID).Return(task, nil)

		_, err := svc.Update(ctx, "user-1", task.ID, UpdateTaskRequest{UserID: strPtr("user-9")})
		assert.ErrorIs(t, err, services.ErrOwnershipChange)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("foreign task is forbidden before ownership is considered", func(t *testing.T) {
		repo := new(MockTaskRepository)
		svc := newService(repo)
		task := models.NewTask("user-1", "Old", nil, "")

		repo.On("GetByID", ctx, task.ID).Return(task, nil)

		_, err := svc.Update(ctx, "user-2", task.ID, UpdateTaskRequest{UserID: strPtr("user-2")})
		assert.ErrorIs(t, err, services.ErrForbidden)
	})

	t.Run("row vanished during update", func(t *testing.T) {
		repo := new(MockTaskRepository)
		svc := newService(repo)
		task := models.NewTask("user-1", "Old", nil, "")

		repo.On("GetByID", ctx, task.ID).Return(task, nil)
		repo.On("Update", ctx, task).Return(repositories.ErrNotFound)

		_, err := svc.Update(ctx, "user-1", task.ID, UpdateTaskRequest{Title: strPtr("x")})
		assert.ErrorIs(t, err, services.ErrTaskNotFound)
	})
}

func TestTaskService_ToggleComplete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTaskRepository)
	svc := newService(repo)
	task := models.NewTask("user-1", "Toggle", nil, "")

	repo.On("GetByID", ctx, task.ID).Return(task, nil)
	repo.On("Update", ctx, task).Return(nil)

	got, err := svc.ToggleComplete(ctx, "user-1", task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	got, err = svc.ToggleComplete(ctx, "user-1", task.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes", func(t *testing.T) {
		repo := new(MockTaskRepository)
		svc := newService(repo)
		task := models.NewTask("user-1", "Bye", nil, "")

		repo.On("GetByID", ctx, task.ID).Return(task, nil)
		repo.On("Delete", ctx, task.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, "user-1", task.ID))
		repo.AssertExpectations(t)
	})

	t.Run("other user cannot delete", func(t *testing.T) {
		repo := new(MockTaskRepository)
		svc := newService(repo)
		task := models.NewTask("user-1", "Bye", nil, "")

		repo.On("GetByID", ctx, task.ID).Return(task, nil)

		err := svc.Delete(ctx, "user-2", task.ID)
		assert.True(t, services.IsForbiddenError(err))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
