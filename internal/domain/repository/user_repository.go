package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate")
)

// UserRepository is the persistence capability the auth core needs.
type UserRepository interface {
	// FindByEmail returns the user whose email equals email exactly, or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Insert creates an active user. It fails atomically with ErrDuplicate
	// when the email is already taken.
	Insert(ctx context.Context, email, passwordHash string) (*entity.User, error)
}
