package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/apperr"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/task/internal/domain"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/task/internal/repository"
)

var (
	// ErrTaskNotFound means no task has the requested id.
	ErrTaskNotFound  = apperr.New(apperr.KindNotFound, "Task not found")
	// ErrForbidden means the task exists but belongs to another user.
	ErrForbidden     = apperr.New(apperr.KindForbidden, "Not authorized to access this task")
	// ErrInvalidStatus rejects statuses other than pending and completed.
	ErrInvalidStatus = apperr.New(apperr.KindValidation, "Invalid task status")
	// ErrTitleRequired rejects blank titles.
	ErrTitleRequired = apperr.New(apperr.KindValidation, "Title is required")
)

// Service manages tasks on behalf of authenticated callers.
type Service struct {
	tasks  repository.TaskRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(tasks repository.TaskRepository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return Service{tasks: tasks, logger: logger}
}

// CreateInput carries the fields of a new task.
type CreateInput struct {
	Title       string
	Description *string
}

// Patch carries a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Status      *string
}

// Create stores a pending task owned by the caller.
func (s Service) Create(ctx context.Context, caller identity.Claims, input CreateInput) (*domain.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	task := &domain.Task{
		AuthUserID:  caller.Subject,
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.StatusPending,
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.logger.Info("task created", "task_id", task.ID, "user_id", caller.Subject)
	return task, nil
}

// List returns the caller's tasks.
func (s Service) List(ctx context.Context, caller identity.Claims) ([]domain.Task, error) {
	tasks, err := s.tasks.ListTasksByOwner(ctx, caller.Subject)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns a task the caller owns. Missing tasks yield ErrTaskNotFound and
// tasks owned by someone else yield ErrForbidden.
func (s Service) Get(ctx context.Context, caller identity.Claims, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task.AuthUserID != caller.Subject {
		s.logger.Warn("task access denied", "task_id", id, "user_id", caller.Subject)
		return nil, ErrForbidden
	}
	return task, nil
}

// Update applies patch to a task the caller owns.
func (s Service) Update(ctx context.Context, caller identity.Claims, id int64, patch Patch) (*domain.Task, error) {
	task, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = patch.Description
	}
	if patch.Status != nil {
		if !domain.ValidStatus(*patch.Status) {
			return nil, ErrInvalidStatus
		}
		task.Status = *patch.Status
	}
	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete removes a task the caller owns.
func (s Service) Delete(ctx context.Context, caller identity.Claims, id int64) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	s.logger.Info("task deleted", "task_id", id, "user_id", caller.Subject)
	return nil
}
