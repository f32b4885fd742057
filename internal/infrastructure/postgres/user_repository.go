package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/repository"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, `
		SELECT id, email, hashed_password, is_active, created_at
		FROM users
		WHERE email = $1
	`, email)

	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// Insert relies on the unique index on users.email; a concurrent duplicate
// surfaces as repository.ErrDuplicate.
func (r *UserRepository) Insert(ctx context.Context, email, passwordHash string) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, hashed_password, is_active)
		VALUES ($1, $2, TRUE)
		RETURNING id, email, hashed_password, is_active, created_at
	`, email, passwordHash)

	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

var _ repository.UserRepository = (*UserRepository)(nil)
