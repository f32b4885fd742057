package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/entity"
)

// TaskRepository persists tasks. Every read and write is scoped to an owner;
// a task owned by someone else behaves exactly like a missing one.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]entity.Task, error)
	UpdateForOwner(ctx context.Context, ownerID, id int64, patch entity.TaskPatch) (*entity.Task, error)
	DeleteForOwner(ctx context.Context, ownerID, id int64) error
}

// Pinger reports store liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
