package application

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-task-tracker/internal/domain/repository"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/apperror"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/helpers"
)

const (
	MsgTaskNotFound = "Task not found"

	DefaultListLimit = 100
)

type CreateTaskInput struct {
	Title       string
	Description *string
	IsCompleted bool
}

// TaskService manages the tasks of an authenticated caller. The caller's
// identity is always an explicit argument.
type TaskService struct {
	tasks  repo.TaskRepository
	logger logrus.FieldLogger
}

func NewTaskService(tasks repo.TaskRepository, logger logrus.FieldLogger) *TaskService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &TaskService{tasks: tasks, logger: logger}
}

func (s *TaskService) Create(ctx context.Context, who Identity, in CreateTaskInput) (*entity.Task, error) {
	if err := validateTitle(&in.Title, true); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	t := &entity.Task{
		Title:       in.Title,
		Description: in.Description,
		IsCompleted: in.IsCompleted,
		OwnerID:     who.UserID(),
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, s.internal(err, "create task failed", who)
	}
	return t, nil
}

// List returns the caller's tasks ordered by id, skipping skip and returning at most limit.
func (s *TaskService) List(ctx context.Context, who Identity, skip, limit int) ([]entity.Task, error) {
	if skip < 0 {
		return nil, apperror.New(apperror.KindInvalid, "skip must be greater than or equal to 0")
	}
	if limit < 0 {
		return nil, apperror.New(apperror.KindInvalid, "limit must be greater than or equal to 0")
	}
	tasks, err := s.tasks.ListByOwner(ctx, who.UserID(), skip, limit)
	if err != nil {
		return nil, s.internal(err, "list tasks failed", who)
	}
	return tasks, nil
}

// Update applies patch to one of the caller's tasks. A task owned by someone
// else is reported as not found.
func (s *TaskService) Update(ctx context.Context, who Identity, id int64, patch entity.TaskPatch) (*entity.Task, error) {
	if err := validateTitle(patch.Title, false); err != nil {
		return nil, err
	}
	if err := validateDescription(patch.Description); err != nil {
		return nil, err
	}
	t, err := s.tasks.UpdateForOwner(ctx, who.UserID(), id, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.New(apperror.KindNotFound, MsgTaskNotFound)
		}
		return nil, s.internal(err, "update task failed", who)
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, who Identity, id int64) error {
	if err := s.tasks.DeleteForOwner(ctx, who.UserID(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.New(apperror.KindNotFound, MsgTaskNotFound)
		}
		return s.internal(err, "delete task failed", who)
	}
	return nil
}

func (s *TaskService) internal(err error, msg string, who Identity) error {
	s.logger.WithError(err).WithField("user_id", who.UserID()).Error(msg)
	return apperror.Wrap(err, apperror.KindInternal, apperror.ErrInternal.Message)
}

func validateTitle(title *string, required bool) error {
	if title == nil {
		if required {
			return apperror.New(apperror.KindInvalid, "title is required")
		}
		return nil
	}
	if *title == "" {
		return apperror.New(apperror.KindInvalid, "title is required")
	}
	if utf8.RuneCountInString(*title) > entity.TaskTitleMaxLen {
		return apperror.New(apperror.KindInvalid, fmt.Sprintf("title must be at most %d characters", entity.TaskTitleMaxLen))
	}
	return nil
}

func validateDescription(desc *string) error {
	if desc != nil && utf8.RuneCountInString(*desc) > entity.TaskDescriptionMaxLen {
		return apperror.New(apperror.KindInvalid, fmt.Sprintf("description must be at most %d characters", entity.TaskDescriptionMaxLen))
	}
	return nil
}
