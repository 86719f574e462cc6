package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskmanager/internal/logger"
	"taskmanager/internal/models/task"
	repo "taskmanager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService owns task mutation: field validation, ownership checks and
// activity-log derivation. Partial updates arrive as functional options so
// absent fields are simply never touched.
type TaskService struct {
	tasks TaskRepository
}

func NewTaskService(tasks TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.tasks.HealthCheck(ctx); err != nil {
		return fmt.Errorf("task repository health check: %w", err)
	}
	return nil
}

// CreateTask validates the supplied fields, fills defaults and persists the
// task with its initial activity-log entry. The owner reference never
// changes afterwards.
func (s *TaskService) CreateTask(ctx context.Context, ownerID uuid.UUID, title, description string, status task.Status, priority task.Priority, dueDate *time.Time) (*task.Task, error) {
	title = strings.TrimSpace(title)
	if len(title) < 3 {
		return nil, NewValidationError("title", "must be at least 3 characters")
	}
	if description == "" {
		return nil, NewValidationError("description", "must not be empty")
	}

	if status == "" {
		status = task.StatusNotStarted
	} else if !status.Valid() {
		return nil, NewValidationError("status", "must be one of: Not Started, In Progress, Completed")
	}

	if priority == "" {
		priority = task.PriorityMedium
	} else if !priority.Valid() {
		return nil, NewValidationError("priority", "must be one of: Low, Medium, High")
	}

	if dueDate != nil && !dueDate.After(time.Now()) {
		return nil, NewValidationError("dueDate", "must be a future date")
	}

	t := &task.Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   time.Now(),
	}
	t.AppendActivity("Task created")

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	logger.Info("Service: task created",
		zap.String("task_id", t.ID.String()),
		zap.String("owner_id", ownerID.String()))
	return t, nil
}

// GetTask loads a task and enforces ownership on reads as well; the caller
// only ever sees their own tasks.
func (s *TaskService) GetTask(ctx context.Context, id, callerID uuid.UUID) (*task.Task, error) {
	t, err := s.loadOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) ListTasks(ctx context.Context, ownerID uuid.UUID) ([]*task.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask merges the supplied options into the task, in the order they
// were supplied, and returns the post-update task. Fields without an option
// keep their value.
func (s *TaskService) UpdateTask(ctx context.Context, id, callerID uuid.UUID, options ...UpdateOption) (*task.Task, error) {
	t, err := s.loadOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("task", id.String())
		}
		return nil, fmt.Errorf("updating task: %w", err)
	}

	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id, callerID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, id, callerID); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("task", id.String())
		}
		return fmt.Errorf("deleting task: %w", err)
	}

	logger.Info("Service: task deleted", zap.String("task_id", id.String()))
	return nil
}

func (s *TaskService) loadOwned(ctx context.Context, id, callerID uuid.UUID) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: task not found", zap.String("task_id", id.String()))
			return nil, NewNotFound("task", id.String())
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}

	if t.OwnerID != callerID {
		logger.Warn("Service: ownership check failed",
			zap.String("task_id", id.String()),
			zap.String("caller_id", callerID.String()))
		return nil, NewForbidden("task", id.String())
	}

	return t, nil
}
