// Package memory is a process-local store implementing the user and task
// repositories. Every operation runs under one mutex, which gives it the same
// single-row atomicity the Postgres store gets from the database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/repository"
)

type Store struct {
	mu sync.Mutex

	users      map[int64]entity.User
	usersEmail map[string]int64
	tasks      map[int64]entity.Task
	nextUserID int64
	nextTaskID int64
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int64]entity.User),
		usersEmail: make(map[string]int64),
		tasks:      make(map[int64]entity.Task),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.usersEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) Insert(ctx context.Context, email, passwordHash string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersEmail[email]; taken {
		return nil, repository.ErrDuplicate
	}
	s.nextUserID++
	u := entity.User{
		ID:           s.nextUserID,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	s.users[u.ID] = u
	s.usersEmail[email] = u.ID
	return &u, nil
}

func (s *Store) Create(ctx context.Context, t *entity.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTaskID++
	t.ID = s.nextTaskID
	t.CreatedAt = s.now()
	s.tasks[t.ID] = cloneTask(*t)
	return nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]entity.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	owned := make([]entity.Task, 0)
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			owned = append(owned, cloneTask(t))
		}
	}
	s.mu.Unlock()

	sort.Slice(owned, func(i, j int) bool { return owned[i].ID < owned[j].ID })
	if offset >= len(owned) {
		return []entity.Task{}, nil
	}
	owned = owned[offset:]
	if limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (s *Store) UpdateForOwner(ctx context.Context, ownerID, id int64, patch entity.TaskPatch) (*entity.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&t)
	s.tasks[id] = t
	out := cloneTask(t)
	return &out, nil
}

func (s *Store) DeleteForOwner(ctx context.Context, ownerID, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func cloneTask(t entity.Task) entity.Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	return t
}

var (
	_ repository.UserRepository = (*Store)(nil)
	_ repository.TaskRepository = (*Store)(nil)
	_ repository.Pinger         = (*Store)(nil)
)
