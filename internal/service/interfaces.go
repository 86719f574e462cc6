package service

import (
	"context"

	"taskmanager/internal/models/task"
	"taskmanager/internal/models/user"

	"github.com/google/uuid"
)

type TaskRepository interface {
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	Delete(context.Context, uuid.UUID) error
	ListByOwner(context.Context, uuid.UUID) ([]*task.Task, error)
	DeleteByOwner(context.Context, uuid.UUID) (int64, error)
	OwnerIDs(context.Context) ([]uuid.UUID, error)
	HealthCheck(context.Context) error
}

type UserRepository interface {
	Create(context.Context, *user.User) error
	Update(context.Context, *user.User) error
	GetByID(context.Context, uuid.UUID) (*user.User, error)
	GetByEmail(context.Context, string) (*user.User, error)
	Delete(context.Context, uuid.UUID) error
	HealthCheck(context.Context) error
}
