package handlers

import (
	"context"
	"time"

	"taskmanager/internal/models/task"
	"taskmanager/internal/models/user"
	"taskmanager/internal/service"

	"github.com/google/uuid"
)

type AccountService interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*user.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, email *string) (*user.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type TaskService interface {
	CreateTask(ctx context.Context, ownerID uuid.UUID, title, description string, status task.Status, priority task.Priority, dueDate *time.Time) (*task.Task, error)
	GetTask(ctx context.Context, id, callerID uuid.UUID) (*task.Task, error)
	ListTasks(ctx context.Context, ownerID uuid.UUID) ([]*task.Task, error)
	UpdateTask(ctx context.Context, id, callerID uuid.UUID, options ...service.UpdateOption) (*task.Task, error)
	DeleteTask(ctx context.Context, id, callerID uuid.UUID) error
	HealthCheck(ctx context.Context) error
}
