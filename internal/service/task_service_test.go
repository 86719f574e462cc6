package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskmanager/internal/models/task"
	repo "taskmanager/internal/repository"
	"taskmanager/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTaskService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockTaskRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectError: false,
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo)
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("success - defaults and initial activity entry", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(created *task.Task) bool {
			return created.Title == "Test" &&
				created.OwnerID == ownerID &&
				created.Status == task.StatusNotStarted &&
				created.Priority == task.PriorityMedium
		})).Return(nil)

		svc := service.NewTaskService(mockRepo)
		result, err := svc.CreateTask(ctx, ownerID, "Test", "Description", "", "", nil)

		require.NoError(t, err)
		assert.Equal(t, task.StatusNotStarted, result.Status)
		assert.Equal(t, task.PriorityMedium, result.Priority)
		require.Len(t, result.ActivityLog, 1)
		assert.Equal(t, "Task created", result.ActivityLog[0].Action)
		mockRepo.AssertExpectations(t)
	})

	t.Run("success - explicit status and priority kept", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		svc := service.NewTaskService(mockRepo)
		result, err := svc.CreateTask(ctx, ownerID, "Test", "Description", task.StatusInProgress, task.PriorityHigh, nil)

		require.NoError(t, err)
		assert.Equal(t, task.StatusInProgress, result.Status)
		assert.Equal(t, task.PriorityHigh, result.Priority)
		mockRepo.AssertExpectations(t)
	})

	t.Run("success - future due date accepted", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		due := time.Now().Add(48 * time.Hour)
		svc := service.NewTaskService(mockRepo)
		result, err := svc.CreateTask(ctx, ownerID, "Test", "Description", "", "", &due)

		require.NoError(t, err)
		require.NotNil(t, result.DueDate)
		assert.Equal(t, due, *result.DueDate)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - past due date", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		due := time.Now().Add(-time.Hour)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.CreateTask(ctx, ownerID, "Test", "Description", "", "", &due)

		requireBusinessCode(t, err, service.CodeValidation)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("error - title too short", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.CreateTask(ctx, ownerID, "  ab  ", "Description", "", "", nil)

		requireBusinessCode(t, err, service.CodeValidation)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("error - empty description", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.CreateTask(ctx, ownerID, "Test", "", "", "", nil)

		requireBusinessCode(t, err, service.CodeValidation)
	})

	t.Run("error - unknown status", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.CreateTask(ctx, ownerID, "Test", "Description", "Paused", "", nil)

		requireBusinessCode(t, err, service.CodeValidation)
	})
}

func TestTaskService_GetTask(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New()
	ownerID := uuid.New()

	t.Run("success - owner reads own task", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, taskID).Return(&task.Task{
			ID:      taskID,
			OwnerID: ownerID,
			Title:   "Mine",
		}, nil)

		svc := service.NewTaskService(mockRepo)
		result, err := svc.GetTask(ctx, taskID, ownerID)

		require.NoError(t, err)
		assert.Equal(t, taskID, result.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - not found", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, taskID).Return(nil, repo.ErrNotFound)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.GetTask(ctx, taskID, ownerID)

		requireBusinessCode(t, err, service.CodeNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - another owner's task", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, taskID).Return(&task.Task{
			ID:      taskID,
			OwnerID: uuid.New(),
		}, nil)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.GetTask(ctx, taskID, ownerID)

		requireBusinessCode(t, err, service.CodeForbidden)
		mockRepo.AssertExpectations(t)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New()
	ownerID := uuid.New()

	freshTask := func() *task.Task {
		return &task.Task{
			ID:          taskID,
			OwnerID:     ownerID,
			Title:       "Original",
			Description: "Original description",
			Status:      task.StatusNotStarted,
			Priority:    task.PriorityMedium,
			ActivityLog: []task.ActivityEntry{{Action: "Task created", Date: time.Now()}},
		}
	}

	t.Run("status change appends exactly one entry and keeps title", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, taskID).Return(freshTask(), nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		svc := service.NewTaskService(mockRepo)
		result, err := svc.UpdateTask(ctx, taskID, ownerID, service.WithStatus(task.StatusInProgress))

		require.NoError(t, err)
		assert.Equal(t, task.StatusInProgress, result.Status)
		assert.Equal(t, "Original", result.Title)
		require.Len(t, result.ActivityLog, 2)
		assert.Equal(t, "Status updated to In Progress", result.ActivityLog[1].Action)
		mockRepo.AssertExpectations(t)
	})

	t.Run("status and priority change appends two ordered entries", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, taskID).Return(freshTask(), nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		svc := service.NewTaskService(mockRepo)
		result, err := svc.UpdateTask(ctx, taskID, ownerID,
			service.WithStatus(task.StatusCompleted),
			service.WithPriority(task.PriorityHigh),
		)

		require.NoError(t, err)
		require.Len(t, result.ActivityLog, 3)
		assert.Equal(t, "Status updated to Completed", result.ActivityLog[1].Action)
		assert.Equal(t, "Priority updated to High", result.ActivityLog[2].Action)
		mockRepo.AssertExpectations(t)
	})

	t.Run("title change leaves the activity log alone", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, taskID).Return(freshTask(), nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		svc := service.NewTaskService(mockRepo)
		result, err := svc.UpdateTask(ctx, taskID, ownerID, service.WithTitle("Renamed"))

		require.NoError(t, err)
		assert.Equal(t, "Renamed", result.Title)
		assert.Len(t, result.ActivityLog, 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - non-owner update rejected before store write", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		stranger := uuid.New()
		mockRepo.On("GetByID", mock.Anything, taskID).Return(freshTask(), nil)

		svc := service.NewTaskService(mockRepo)
		_, err := svc.UpdateTask(ctx, taskID, stranger, service.WithTitle("Hijacked"))

		requireBusinessCode(t, err, service.CodeForbidden)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New()
	ownerID := uuid.New()

	t.Run("success - owner deletes own task", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, taskID).Return(&task.Task{
			ID:      taskID,
			OwnerID: ownerID,
		}, nil)
		mockRepo.On("Delete", mock.Anything, taskID).Return(nil)

		svc := service.NewTaskService(mockRepo)
		err := svc.DeleteTask(ctx, taskID, ownerID)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - non-owner delete leaves the task", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, taskID).Return(&task.Task{
			ID:      taskID,
			OwnerID: ownerID,
		}, nil)

		svc := service.NewTaskService(mockRepo)
		err := svc.DeleteTask(ctx, taskID, uuid.New())

		requireBusinessCode(t, err, service.CodeForbidden)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestTaskService_ListTasks(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	mockRepo := new(MockTaskRepository)
	mockRepo.On("ListByOwner", mock.Anything, ownerID).Return([]*task.Task{
		{ID: uuid.New(), OwnerID: ownerID, Title: "Second"},
		{ID: uuid.New(), OwnerID: ownerID, Title: "First"},
	}, nil)

	svc := service.NewTaskService(mockRepo)
	result, err := svc.ListTasks(ctx, ownerID)

	require.NoError(t, err)
	assert.Len(t, result, 2)
	mockRepo.AssertExpectations(t)
}

func requireBusinessCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)

	var business *service.BusinessError
	require.ErrorAs(t, err, &business)
	assert.Equal(t, code, business.Code)
}
