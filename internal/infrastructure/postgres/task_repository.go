package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/repository"
)

const taskColumns = `id, title, description, is_completed, created_at, owner_id`

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	t := &entity.Task{}
	var desc pgtype.Text
	if err := row.Scan(&t.ID, &t.Title, &desc, &t.IsCompleted, &t.CreatedAt, &t.OwnerID); err != nil {
		return nil, err
	}
	if desc.Valid {
		s := desc.String
		t.Description = &s
	}
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO tasks (title, description, is_completed, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+taskColumns, t.Title, t.Description, t.IsCompleted, t.OwnerID)

	created, err := scanTask(row)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	*t = *created
	return nil
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]entity.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3
	`, ownerID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

// UpdateForOwner applies the patch in a single statement; nil fields keep
// their stored value.
func (r *TaskRepository) UpdateForOwner(ctx context.Context, ownerID, id int64, patch entity.TaskPatch) (*entity.Task, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE tasks
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    is_completed = COALESCE($5, is_completed)
		WHERE id = $1 AND owner_id = $2
		RETURNING `+taskColumns, id, ownerID, patch.Title, patch.Description, patch.IsCompleted)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	return t, nil
}

func (r *TaskRepository) DeleteForOwner(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
