package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/repository"
)

var (
	userCols = []string{"id", "email", "hashed_password", "is_active", "created_at"}
	taskCols = []string{"id", "title", "description", "is_completed", "created_at", "owner_id"}
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

// ---- users ----

func TestUserRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT id, email, hashed_password, is_active, created_at\s+FROM users\s+WHERE email = \$1`).
			WithArgs("a@example.com").
			WillReturnRows(pgxmock.NewRows(userCols).AddRow(int64(1), "a@example.com", "digest", true, now))

		u, err := NewUserRepository(mock).FindByEmail(ctx, "a@example.com")
		require.NoError(t, err)
		assert.Equal(t, entity.User{ID: 1, Email: "a@example.com", PasswordHash: "digest", IsActive: true, CreatedAt: now}, *u)
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM users`).
			WithArgs("nobody@example.com").
			WillReturnRows(pgxmock.NewRows(userCols))

		_, err := NewUserRepository(mock).FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("driver error", func(t *testing.T) {
		mock := newMock(t)
		boom := errors.New("conn reset")
		mock.ExpectQuery(`FROM users`).WithArgs("a@example.com").WillReturnError(boom)

		_, err := NewUserRepository(mock).FindByEmail(ctx, "a@example.com")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestUserRepository_Insert(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("created", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO users \(email, hashed_password, is_active\)`).
			WithArgs("a@example.com", "digest").
			WillReturnRows(pgxmock.NewRows(userCols).AddRow(int64(5), "a@example.com", "digest", true, now))

		u, err := NewUserRepository(mock).Insert(ctx, "a@example.com", "digest")
		require.NoError(t, err)
		assert.Equal(t, int64(5), u.ID)
		assert.True(t, u.IsActive)
	})

	t.Run("unique violation", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("a@example.com", "digest").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})

		_, err := NewUserRepository(mock).Insert(ctx, "a@example.com", "digest")
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("other pg error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("a@example.com", "digest").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.NotNullViolation})

		_, err := NewUserRepository(mock).Insert(ctx, "a@example.com", "digest")
		require.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrDuplicate)
	})
}

// ---- tasks ----

func TestTaskRepository_Create(t *testing.T) {
	mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO tasks \(title, description, is_completed, owner_id\)`).
		WithArgs("write tests", pgxmock.AnyArg(), false, int64(3)).
		WillReturnRows(pgxmock.NewRows(taskCols).AddRow(int64(10), "write tests", nil, false, now, int64(3)))

	task := &entity.Task{Title: "write tests", OwnerID: 3}
	require.NoError(t, NewTaskRepository(mock).Create(context.Background(), task))
	assert.Equal(t, int64(10), task.ID)
	assert.Equal(t, now, task.CreatedAt)
	assert.Nil(t, task.Description)
}

func TestTaskRepository_ListByOwner(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("rows", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM tasks\s+WHERE owner_id = \$1\s+ORDER BY id\s+OFFSET \$2 LIMIT \$3`).
			WithArgs(int64(3), 0, 100).
			WillReturnRows(pgxmock.NewRows(taskCols).
				AddRow(int64(1), "a", "notes", false, now, int64(3)).
				AddRow(int64(2), "b", nil, true, now, int64(3)))

		tasks, err := NewTaskRepository(mock).ListByOwner(ctx, 3, 0, 100)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		require.NotNil(t, tasks[0].Description)
		assert.Equal(t, "notes", *tasks[0].Description)
		assert.Nil(t, tasks[1].Description)
		assert.True(t, tasks[1].IsCompleted)
	})

	t.Run("empty is not nil", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM tasks`).
			WithArgs(int64(3), 5, 10).
			WillReturnRows(pgxmock.NewRows(taskCols))

		tasks, err := NewTaskRepository(mock).ListByOwner(ctx, 3, 5, 10)
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})
}

func TestTaskRepository_UpdateForOwner(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	done := true

	t.Run("updated", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE tasks\s+SET title = COALESCE\(\$3, title\)`).
			WithArgs(int64(1), int64(3), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows(taskCols).AddRow(int64(1), "a", nil, true, now, int64(3)))

		task, err := NewTaskRepository(mock).UpdateForOwner(ctx, 3, 1, entity.TaskPatch{IsCompleted: &done})
		require.NoError(t, err)
		assert.True(t, task.IsCompleted)
	})

	t.Run("foreign or missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE tasks`).
			WithArgs(int64(1), int64(4), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows(taskCols))

		_, err := NewTaskRepository(mock).UpdateForOwner(ctx, 4, 1, entity.TaskPatch{IsCompleted: &done})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestTaskRepository_DeleteForOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND owner_id = \$2`).
			WithArgs(int64(1), int64(3)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, NewTaskRepository(mock).DeleteForOwner(ctx, 3, 1))
	})

	t.Run("nothing matched", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`DELETE FROM tasks`).
			WithArgs(int64(1), int64(4)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, NewTaskRepository(mock).DeleteForOwner(ctx, 4, 1), repository.ErrNotFound)
	})
}
