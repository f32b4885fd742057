// Package container builds the application graph once at startup. Every
// component receives its collaborators explicitly; nothing here is global.
package container

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-task-tracker/config"
	"github.com/oksasatya/go-ddd-task-tracker/internal/application"
	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/repository"
	"github.com/oksasatya/go-ddd-task-tracker/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-ddd-task-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/helpers"
)

// Stores groups the persistence ports the services run on.
type Stores struct {
	Users repository.UserRepository
	Tasks repository.TaskRepository
	Ping  repository.Pinger
}

// MemoryStores returns stores backed by one in-process memory.Store.
func MemoryStores() Stores {
	s := memory.NewStore()
	return Stores{Users: s, Tasks: s, Ping: s}
}

// OpenStores connects the configured storage driver. For postgres it applies
// pending migrations first. The returned func releases the connections.
func OpenStores(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (Stores, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		return MemoryStores(), func() {}, nil
	case config.StoragePostgres:
		dsn := cfg.PostgresDSN()
		if err := pginfra.RunMigrations(dsn, cfg.MigrationsDir, logger); err != nil {
			return Stores{}, nil, fmt.Errorf("migrate: %w", err)
		}
		pool, err := pginfra.NewPool(ctx, dsn, pginfra.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
		})
		if err != nil {
			return Stores{}, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return Stores{
			Users: pginfra.NewUserRepository(pool),
			Tasks: pginfra.NewTaskRepository(pool),
			Ping:  pool,
		}, pool.Close, nil
	default:
		return Stores{}, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// Container holds the constructed components shared by the router and tools.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Store    repository.Pinger
	Users    repository.UserRepository
	JWT      *helpers.JWTManager
	Hasher   *helpers.PasswordHasher
	Sessions *application.SessionService
	Resolver *application.IdentityResolver
	Tasks    *application.TaskService
}

func New(cfg *config.Config, logger *logrus.Logger, stores Stores) (*Container, error) {
	jwt, err := helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.DefaultTTL)
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	hasher, err := helpers.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}
	sessions, err := application.NewSessionService(stores.Users, hasher, jwt, cfg.SessionTTL, logger.WithField("component", "sessions"))
	if err != nil {
		return nil, fmt.Errorf("session service: %w", err)
	}
	return &Container{
		Config:   cfg,
		Logger:   logger,
		Store:    stores.Ping,
		Users:    stores.Users,
		JWT:      jwt,
		Hasher:   hasher,
		Sessions: sessions,
		Resolver: application.NewIdentityResolver(jwt, stores.Users),
		Tasks:    application.NewTaskService(stores.Tasks, logger.WithField("component", "tasks")),
	}, nil
}
